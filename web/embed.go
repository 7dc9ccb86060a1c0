// Package web holds the browser UI served at the root path.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var staticFiles embed.FS

// Static returns the UI assets rooted at the static directory.
func Static() fs.FS {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		// static is embedded at build time; Sub only fails on an invalid name.
		panic(err)
	}
	return sub
}
