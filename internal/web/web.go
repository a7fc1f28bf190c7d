package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bcnelson/srvadm-console/internal/dialog"
	"github.com/bcnelson/srvadm-console/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

//go:embed templates/* static/*
var content embed.FS

// fallbackPath is where the root and unknown routes land.
const fallbackPath = "/host"

// Server holds dependencies for web handlers.
type Server struct {
	sessions  *service.Sessions
	directory *service.Directory
	log       *logrus.Entry
	templates map[string]*template.Template
	funcMap   template.FuncMap
}

// NewRouter creates a new web router with all routes configured.
func NewRouter(sessions *service.Sessions, directory *service.Directory, log *logrus.Entry) http.Handler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	s := &Server{
		sessions:  sessions,
		directory: directory,
		log:       log.WithField("component", "web"),
	}

	// Parse all templates
	s.templates = s.parseTemplates()

	r := chi.NewRouter()

	// Static files
	staticFS, _ := fs.Sub(content, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	r.Get("/", s.handleFallback)
	r.NotFound(s.handleFallback)

	// Read-only host queries
	r.Get("/lookup", s.handleLookup)
	r.Get("/hosts-file/{role}", s.handleHostsFile)

	// Per-browser workspace routes
	r.Group(func(r chi.Router) {
		r.Use(s.workspaceSession)

		// Resource routes (generic for ip, role and host)
		r.Get("/{resource}", s.handleResourceList)
		r.Post("/{resource}/add", s.handleResourceAdd)
		r.Get("/{resource}/{index}/edit", s.handleResourceEdit)
		r.Post("/{resource}/{index}/save", s.handleResourceSave)
		r.Post("/{resource}/{index}/confirm", s.handleResourceConfirm)
		r.Post("/{resource}/{index}/delete", s.handleResourceDelete)
	})

	return r
}

// parseTemplates parses all templates with custom functions.
func (s *Server) parseTemplates() map[string]*template.Template {
	s.funcMap = template.FuncMap{
		"join":  strings.Join,
		"lower": strings.ToLower,
		"has":   has,
		"lines": lines,
	}

	templates := make(map[string]*template.Template)

	// Read base template and components
	baseContent, _ := content.ReadFile("templates/base.html")
	navContent, _ := content.ReadFile("templates/components/nav.html")
	flashContent, _ := content.ReadFile("templates/components/flash.html")
	modalContent, _ := content.ReadFile("templates/components/modal.html")

	// Combine base with components
	baseWithComponents := string(baseContent) + string(navContent) + string(flashContent) + string(modalContent)

	// Parse each page template separately with the base
	pageFiles, _ := fs.Glob(content, "templates/pages/*.html")
	for _, pagePath := range pageFiles {
		pageName := strings.TrimSuffix(filepath.Base(pagePath), ".html")

		pageContent, _ := content.ReadFile(pagePath)

		tmpl, err := template.New(pageName).Funcs(s.funcMap).Parse(baseWithComponents + string(pageContent))
		if err != nil {
			panic("failed to parse template " + pageName + ": " + err.Error())
		}

		templates[pageName] = tmpl
	}

	return templates
}

// has reports whether values contains v.
func has(values []string, v string) bool {
	return slices.Contains(values, v)
}

// lines joins values one per line for textareas.
func lines(values []string) string {
	return strings.Join(values, "\n")
}

// PageData holds common data passed to all page templates.
type PageData struct {
	Title   string
	Active  string // Current nav item
	Flash   *FlashMessage
	Dialog  *dialog.Dialog
	Content any
}

// FlashMessage represents a flash message.
type FlashMessage struct {
	Type    string // "success", "error", "info"
	Message string
}
