// Package data provides the embedded map files.
package data

import (
	"embed"
	"io/fs"
)

//go:embed maps/*.yaml
var mapsFS embed.FS

// Maps returns the embedded map directory. Map "town" is "town.yaml".
func Maps() fs.FS {
	sub, err := fs.Sub(mapsFS, "maps")
	if err != nil {
		panic(err)
	}
	return sub
}
