// Package web embeds the page templates and the stylesheet.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static templates
var content embed.FS

// StaticFS returns the files served under /static/.
func StaticFS() fs.FS {
	return mustSub("static")
}

// TemplatesFS returns the layout and page templates.
func TemplatesFS() fs.FS {
	return mustSub("templates")
}

// Stylesheet returns the shared stylesheet, inlined into static snapshots.
func Stylesheet() ([]byte, error) {
	return fs.ReadFile(content, "static/style.css")
}

// mustSub panics only if the embed directive and the directory names disagree.
func mustSub(dir string) fs.FS {
	sub, err := fs.Sub(content, dir)
	if err != nil {
		panic("web: " + err.Error())
	}
	return sub
}
