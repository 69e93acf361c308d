// Package cli implements the sagago command line: listing installed
// adaptors and configuration, resolving URLs, and running the built-in file
// and job capabilities from a shell.
package cli
