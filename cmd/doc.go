// Package cmd implements the command-line interface dtt for Tokyo Tyrant
// database servers. Every command opens one connection, sends its requests
// through the pipelining client and prints the result.
//
// The package is organized into several subpackages:
//
//   - hash: Commands for hash databases (put, get, mget, addint, perf, etc.)
//   - table: Commands for table databases (put, get, setindex, search, etc.)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See dtt -help for a list of all commands.
package cmd
