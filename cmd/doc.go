// Package cmd implements the command-line interface for the dRec data
// recording library.
//
// The package is organized into several subpackages:
//
//   - bench: the recording throughput benchmark
//   - util: shared utilities for command-line processing and configuration (internal use)
//
// Configuration can be set via command line flags or environment variables
// with the DREC_ prefix (e.g. DREC_SAMPLES=100000).
//
// See drec -help for a list of all commands.
package cmd
