package main

import (
	"os"

	"github.com/mitchellh/go-homedir"
)

// expandPath expands a leading ~ and environment variables in path.
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if p, err := homedir.Expand(path); err == nil {
		path = p
	}
	return os.ExpandEnv(path)
}
