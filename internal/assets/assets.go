// Package assets embeds the default portal pages.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed web
var webFS embed.FS

// FS returns the default page set rooted at the site directory.
func FS() fs.FS {
	sub, err := fs.Sub(webFS, "web")
	if err != nil {
		// "web" is a valid path and always embedded.
		panic(err)
	}
	return sub
}
