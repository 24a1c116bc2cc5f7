// Package web embeds the HTML pages and browser assets served by the app.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed views/*.html static/*
var files embed.FS

// Page returns a handler that serves the named page from views/.
func Page(name string) http.HandlerFunc {
	path := "views/" + name
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, files, path)
	}
}

// Static serves the page script and stylesheet. Mount it with the /static/
// prefix stripped.
func Static() http.Handler {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServerFS(sub)
}
