// Package cli is responsible for reading the command line and handling
// process-level concerns like exit codes. The arguments are the script
// itself, so nothing is consumed: switches are detected in place.
package cli
