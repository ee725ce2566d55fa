// Package web renders the server-side HTML: the login and registration forms
// and the page shell that hosts the task client script.
package web

import (
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static/app.js
var appScript []byte

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// FormPage feeds the login and register templates.
type FormPage struct {
	Error    string
	Username string
}

// ShellPage feeds the authenticated task page.
type ShellPage struct {
	Username string
}

// Renderer executes the embedded templates.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() *Renderer {
	return &Renderer{tmpl: templates}
}

func (r *Renderer) Login(w io.Writer, page FormPage) error {
	return r.tmpl.ExecuteTemplate(w, "login.tmpl", page)
}

func (r *Renderer) Register(w io.Writer, page FormPage) error {
	return r.tmpl.ExecuteTemplate(w, "register.tmpl", page)
}

func (r *Renderer) Shell(w io.Writer, page ShellPage) error {
	return r.tmpl.ExecuteTemplate(w, "app.tmpl", page)
}

// Script returns the client-side task script served at /static/app.js.
func Script() []byte {
	return appScript
}
