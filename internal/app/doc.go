// Package app wires application dependencies for the CLI.
//
// It loads Config (TOML file, then environment, then flags), builds the
// logger and crypto provider, and exposes them via the Wire struct. Wire also
// assembles a ready-to-run conversation: session, relay connection and chat
// driver.
package app
