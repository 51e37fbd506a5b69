//go:build mage

// Package main provides build targets for the reel project using Mage.
//
// Usage:
//
//	mage build            Compile reel binary to bin/
//	mage install          Install reel to GOPATH/bin
//	mage clean            Remove build artifacts
//	mage lint             Run golangci-lint
//	mage test:all         Run all tests (unit + integration)
//	mage test:unit        Run only unit tests (exclude integration)
//	mage test:integration Run only integration tests (builds first)
//	mage test:cover       Run unit tests with a coverage profile
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "reel"
	binaryDir  = "bin"
	cmdDir     = "./cmd/reel"
)

// Build compiles the reel binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
