// Package view holds the embedded HTML templates.
package view

import (
	"embed"         // Templates compiled into the binary
	"html/template" // Escaped HTML rendering
)

//go:embed templates/*.html
var files embed.FS

// Templates parses every page template; names are the file base names.
func Templates() (*template.Template, error) {
	return template.New("").ParseFS(files, "templates/*.html")
}
