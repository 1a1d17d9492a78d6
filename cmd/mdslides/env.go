package main

import (
	"io"
	"os"
	"time"

	"github.com/go-rod/rod/lib/launcher"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now         func() time.Time
	Stdout      io.Writer
	Stderr      io.Writer
	OpenBrowser func(url string) // Opens a URL in the system browser
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:         time.Now,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		OpenBrowser: launcher.Open,
	}
}
