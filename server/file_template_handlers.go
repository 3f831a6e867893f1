package server

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/rs/zerolog/log"
)

//go:embed templates/*
var templateFiles embed.FS

const contentTypeHTML = "text/html; charset=utf-8"

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// ParseTemplate parses a page together with the shared layout.
func ParseTemplate(name string) (*template.Template, error) {
	return template.New(name).ParseFS(TemplateFilesFS(), "layout.html", name)
}

type pages struct {
	entry        *template.Template
	login        *template.Template
	dashboard    *template.Template
	accessDenied *template.Template
}

func parsePages() (*pages, error) {
	p := &pages{}
	for name, dst := range map[string]**template.Template{
		"entry.html":         &p.entry,
		"login.html":         &p.login,
		"dashboard.html":     &p.dashboard,
		"access_denied.html": &p.accessDenied,
	} {
		tmpl, err := ParseTemplate(name)
		if err != nil {
			return nil, err
		}
		*dst = tmpl
	}
	return p, nil
}

// render executes into a buffer first so a template error never leaves a partial page.
func (s *Server) render(w http.ResponseWriter, status int, tmpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Err(err).Str("template", tmpl.Name()).Msg("Failed to render template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
