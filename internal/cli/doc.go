// Package cli provides the interactive userdir command-line client.
//
// It wires the user directory and the session manager into a small REPL.
// Typical flow: restore a saved session if there is one, then read and
// execute commands until the user exits.
//
// Key features:
//   - Register a user (email, full name, password, role)
//   - Login / Logout with a session that survives restarts
//   - Whoami, Find by email, List the directory
//
// Passwords are read without echo when stdin is a terminal and are never
// printed. The REPL is started via App.Run(ctx), which blocks until the user
// exits or input ends.
package cli
