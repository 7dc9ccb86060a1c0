// Package events carries task lifecycle notifications from the service layer
// to any interested component without the service knowing who listens.
//
// The primary components are:
//   - TaskEvent: something that happened to a task (created, executed, ...)
//   - EventHandler: interface for components that react to events
//   - EventEmitter: interface for components that publish events
//   - AuditLogHandler: an EventHandler that records every event in the log
package events
