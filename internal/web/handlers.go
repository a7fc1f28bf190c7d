package web

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"github.com/bcnelson/srvadm-console/internal/crud"
	"github.com/bcnelson/srvadm-console/internal/domain"
	"github.com/bcnelson/srvadm-console/internal/service"
	"github.com/bcnelson/srvadm-console/internal/srvadm"
	"github.com/bcnelson/srvadm-console/internal/validation"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// handleFallback sends the root and unknown routes to the host list.
func (s *Server) handleFallback(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, fallbackPath, http.StatusFound)
}

// resolveView finds the resource named in the URL for the current workspace.
// Unknown resources fall back to the host list.
func (s *Server) resolveView(w http.ResponseWriter, r *http.Request) (*service.Workspace, resourceView, bool) {
	ws := getWorkspace(r.Context())
	if ws == nil {
		s.renderError(w, "No session", http.StatusInternalServerError)
		return nil, nil, false
	}

	view, ok := bindings(ws)[chi.URLParam(r, "resource")]
	if !ok {
		s.handleFallback(w, r)
		return nil, nil, false
	}
	return ws, view, true
}

// rowIndex parses the row index from the URL.
func (s *Server) rowIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index := parseInt(chi.URLParam(r, "index"), -1)
	if index < 0 {
		s.renderError(w, "Invalid row", http.StatusBadRequest)
		return 0, false
	}
	return index, true
}

// handleResourceList activates a resource screen: the list is fetched
// again on every visit.
func (s *Server) handleResourceList(w http.ResponseWriter, r *http.Request) {
	ws, view, ok := s.resolveView(w, r)
	if !ok {
		return
	}

	if err := view.Load(r.Context()); err != nil {
		s.logFailure(r, view, "load", err)
	}

	s.renderResource(w, r, ws, view, -1, nil, nil)
}

// handleResourceAdd appends a blank row and opens it for editing.
func (s *Server) handleResourceAdd(w http.ResponseWriter, r *http.Request) {
	ws, view, ok := s.resolveView(w, r)
	if !ok {
		return
	}

	view.Prepare(r.Context())
	index := view.Add()

	s.renderResource(w, r, ws, view, index, nil, nil)
}

// handleResourceEdit opens a row for editing.
func (s *Server) handleResourceEdit(w http.ResponseWriter, r *http.Request) {
	ws, view, ok := s.resolveView(w, r)
	if !ok {
		return
	}
	index, ok := s.rowIndex(w, r)
	if !ok {
		return
	}

	view.Prepare(r.Context())

	page := view.Page(index, nil)
	if index >= len(page.Rows) {
		s.renderResource(w, r, ws, view, -1, nil, rowMissing())
		return
	}

	s.renderResource(w, r, ws, view, index, nil, nil)
}

// handleResourceSave applies the submitted row and sends it to the backend.
func (s *Server) handleResourceSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	ws, view, ok := s.resolveView(w, r)
	if !ok {
		return
	}
	index, ok := s.rowIndex(w, r)
	if !ok {
		return
	}

	err := view.Save(r.Context(), index, r.PostForm)

	var verrs validation.ValidationErrors
	switch {
	case err == nil:
		s.renderResource(w, r, ws, view, -1, nil, nil)
	case errors.As(err, &verrs):
		// Nothing was applied; keep the form open with what was typed.
		view.Prepare(r.Context())
		s.renderResource(w, r, ws, view, index, r.PostForm, &FlashMessage{Type: "error", Message: verrs.Summary()})
	case errors.Is(err, crud.ErrNoSuchRow):
		s.renderResource(w, r, ws, view, -1, nil, rowMissing())
	default:
		s.logFailure(r, view, "save", err)
		s.renderResource(w, r, ws, view, -1, nil, nil)
	}
}

// handleResourceConfirm asks the user to confirm a delete.
func (s *Server) handleResourceConfirm(w http.ResponseWriter, r *http.Request) {
	ws, view, ok := s.resolveView(w, r)
	if !ok {
		return
	}
	index, ok := s.rowIndex(w, r)
	if !ok {
		return
	}

	var flash *FlashMessage
	if err := view.ConfirmDelete(index); err != nil {
		flash = rowMissing()
	}

	s.renderResource(w, r, ws, view, -1, nil, flash)
}

// handleResourceDelete removes a confirmed row.
func (s *Server) handleResourceDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	ws, view, ok := s.resolveView(w, r)
	if !ok {
		return
	}
	index, ok := s.rowIndex(w, r)
	if !ok {
		return
	}

	var flash *FlashMessage
	if err := view.Remove(r.Context(), index, r.PostForm.Get("key")); err != nil {
		if errors.Is(err, crud.ErrNoSuchRow) {
			flash = rowMissing()
		} else {
			s.logFailure(r, view, "delete", err)
		}
	}

	s.renderResource(w, r, ws, view, -1, nil, flash)
}

// LookupPageData holds data for the host lookup page.
type LookupPageData struct {
	By       string
	Query    string
	Searched bool
	Hosts    []domain.Host
}

// handleLookup finds hosts by ip, role or host name.
func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	lookup := LookupPageData{
		By:    query.Get("by"),
		Query: query.Get("q"),
	}
	if lookup.By == "" {
		lookup.By = string(service.ByHost)
	}

	data := PageData{
		Title:  "Lookup",
		Active: "lookup",
	}

	if lookup.Query != "" {
		by, err := service.ParseLookupBy(lookup.By)
		if err == nil {
			lookup.Hosts, err = s.directory.Lookup(r.Context(), by, lookup.Query)
		}
		switch {
		case err == nil:
			lookup.Searched = true
		case errors.Is(err, domain.ErrInvalidInput):
			data.Flash = &FlashMessage{Type: "error", Message: err.Error()}
		default:
			s.log.WithError(err).Warn("Host lookup failed")
			data.Flash = &FlashMessage{Type: "error", Message: fmt.Sprintf("Could not get data from api. HTTP status: %d", srvadm.StatusCode(err))}
		}
	}

	data.Content = lookup
	s.renderPage(w, r, "lookup", data)
}

// handleHostsFile serves the hosts file of a role as plain text.
func (s *Server) handleHostsFile(w http.ResponseWriter, r *http.Request) {
	role := chi.URLParam(r, "role")

	text, err := s.directory.HostsFile(r.Context(), role)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, domain.ErrNotFound):
			http.Error(w, "No hosts for role "+role, http.StatusNotFound)
		default:
			s.log.WithError(err).WithField("role", role).Warn("Hosts file export failed")
			http.Error(w, "Could not get data from api", http.StatusBadGateway)
		}
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", "hosts."+role))
	_, _ = w.Write([]byte(text))
}

func rowMissing() *FlashMessage {
	return &FlashMessage{Type: "error", Message: "That row no longer exists. The list may have been reloaded."}
}

// logFailure records a backend failure that has already been shown to the user.
func (s *Server) logFailure(r *http.Request, view resourceView, action string, err error) {
	s.log.WithFields(logrus.Fields{
		"resource": view.Meta().Name,
		"action":   action,
		"status":   srvadm.StatusCode(err),
	}).WithError(err).Debug("Backend request failed")
}

// renderResource renders a resource page, consuming the pending dialog.
func (s *Server) renderResource(w http.ResponseWriter, r *http.Request, ws *service.Workspace, view resourceView, editing int, draft url.Values, flash *FlashMessage) {
	meta := view.Meta()
	data := PageData{
		Title:   meta.Plural,
		Active:  meta.Name,
		Flash:   flash,
		Dialog:  ws.Dialogs.Take(),
		Content: view.Page(editing, draft),
	}
	s.renderPage(w, r, "resource", data)
}

// renderPage renders the full page, or only the content block for htmx requests.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, page string, data PageData) {
	if isHTMX(r) {
		s.renderFragment(w, page, data)
		return
	}
	s.render(w, "base", page, data)
}

// isHTMX reports whether the request came from an htmx swap rather than a
// full navigation.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true" && r.Header.Get("HX-Boosted") == ""
}

// render renders a full page template.
func (s *Server) render(w http.ResponseWriter, base, page string, data PageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	tmpl, ok := s.templates[page]
	if !ok {
		http.Error(w, "Template not found: "+page, http.StatusInternalServerError)
		return
	}

	if err := tmpl.ExecuteTemplate(w, base, data); err != nil {
		s.log.WithError(err).WithField("page", page).Error("Template error")
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
	}
}

// renderFragment renders just the content block for htmx requests.
func (s *Server) renderFragment(w http.ResponseWriter, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	tmpl, ok := s.templates[page]
	if !ok {
		http.Error(w, "Template not found: "+page, http.StatusInternalServerError)
		return
	}

	if err := tmpl.ExecuteTemplate(w, "content", data); err != nil {
		s.log.WithError(err).WithField("page", page).Error("Template error")
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
	}
}

// renderError renders an error message.
func (s *Server) renderError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`<div class="flash flash-error">` + template.HTMLEscapeString(message) + `</div>`))
}
