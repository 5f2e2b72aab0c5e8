// Package main is the entry point for the nomora backend.
package main

import "nomora-backend/cmd/server/cmd"

// Version information, set by build flags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd.Version = version
	cmd.Commit = commit
	cmd.Date = date
	cmd.Execute()
}
