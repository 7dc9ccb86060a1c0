// Package domain defines the core types of the task manager: stored command
// definitions, the command types that select how they are launched, and the
// outcome of running them. It has no dependencies on storage or transport.
package domain
