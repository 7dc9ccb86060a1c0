// Package filestore implements store.TaskStore as an in-memory collection
// backed by a Persister that saves the whole collection on every mutation.
//
// The bundled JSONPersister writes a single JSON array to a file through an
// afero.Fs, replacing the file atomically (write to a temp file, then rename).
// Mutations are staged on a copy of the collection and only become visible
// once the persister has accepted them, so a failed save never leaves memory
// and disk out of step. Release is the exception: it keeps its change in
// memory regardless, for state that must not outlive a write error.
package filestore
