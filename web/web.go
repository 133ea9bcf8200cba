// Package web carries the embedded assets for the HTML interface.
package web

import "embed"

// Templates holds the page templates served by the web handler.
//
//go:embed templates/*.html
var Templates embed.FS
