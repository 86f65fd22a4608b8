// Package commands defines the cipherlink CLI.
//
// Commands
//
//   - chat <user> <recipient>  Open an encrypted conversation through a relay
//   - version                  Print the build version
//
// # Implementation
//
// The root command loads the TOML config, applies SERVER_HOST and DEBUG from
// the environment and then the persistent flags, and builds an app.Wire
// before any subcommand runs.
package commands
