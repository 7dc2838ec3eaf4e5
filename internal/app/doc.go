// Package app contains the core application logic. It wires the interpreter
// session, loads the layered definition sources and runs either the help
// dispatcher or the assembled script, decoupled from the process entrypoint.
package app
