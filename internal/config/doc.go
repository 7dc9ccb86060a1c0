// Package config handles configuration loading, parsing, and validation
// from various sources (defaults, an optional YAML file, TASKPAD_ environment
// variables and command-line flags). It provides type-safe access to the
// settings needed by the server, the task store and the command executor.
//
// Cross-origin access is off by default. The API can run commands on the
// host, so only the UI served from the same origin may call it unless
// server.allowed_origins (TASKPAD_SERVER_ALLOWED_ORIGINS) lists other
// origins, or "*" for any.
package config
