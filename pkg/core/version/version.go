// ============================================================================
// euklid - Exact rational arithmetic
// ============================================================================
//
// Package:     version
// Description: Central version management for the engine and its front ends
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package version

import (
	"fmt"
	"runtime"
)

// Version constants for euklid components
const (
	// Platform version
	Platform = "1.0.0"

	// Component versions
	Engine  = "1.0.0"
	Service = "1.0.0"
	Server  = "1.0.0"
	Store   = "1.0.0"

	// API is the path version of the HTTP and gRPC APIs
	API = "v1"
)

// Set at build time with -ldflags "-X .../version.Commit=..."
var (
	Commit    = "unknown"
	BuildDate = "unknown"
)

// ComponentVersion returns the version for a given component name
func ComponentVersion(name string) string {
	switch name {
	case "engine":
		return Engine
	case "service":
		return Service
	case "server":
		return Server
	case "store":
		return Store
	default:
		return Platform
	}
}

// Info describes the running binary
type Info struct {
	Version   string `json:"version" yaml:"version"`
	API       string `json:"api" yaml:"api"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"build_date" yaml:"build_date"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// Get returns the build information
func Get() Info {
	return Info{
		Version:   Platform,
		API:       API,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String returns a one-line summary
func (i Info) String() string {
	return fmt.Sprintf("euklid %s (api %s, commit %s, built %s, %s %s)",
		i.Version, i.API, i.Commit, i.BuildDate, i.GoVersion, i.Platform)
}
