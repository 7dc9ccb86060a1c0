// Package store defines interfaces for task persistence operations.
// These interfaces abstract the underlying storage mechanism from the
// application's core logic, so services depend on behavior rather than on
// a particular file format or database.
package store
