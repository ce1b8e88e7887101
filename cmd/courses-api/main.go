package main

import (
	"os"
)

// @title Courses API
// @version 1.0.0
// @description Course enrollment, rosters and waiting lists
// @BasePath /
// @schemes http

// Build information injected via ldflags.
var version = "dev"

func main() {
	if err := newRootCmd(version).Execute(); err != nil {
		os.Exit(1)
	}
}
