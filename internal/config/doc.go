// Package config loads patchbay settings from defaults, patchbay.toml,
// a .env file, PATCHBAY_ environment variables and command line flags,
// in increasing order of priority.
package config
