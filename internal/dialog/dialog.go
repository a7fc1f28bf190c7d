// Package dialog holds the modal confirmations and error notices a
// workspace has queued for its next rendered page.
package dialog

import "sync"

// Kind identifies the type of modal.
type Kind string

const (
	KindDelete Kind = "delete"
	KindError  Kind = "error"
)

// Dialog is a modal waiting to be shown.
// Index and Scope are only meaningful for delete confirmations.
type Dialog struct {
	Kind    Kind
	Scope   string
	Index   int
	Message string
}

// IsDelete reports whether the dialog asks for a delete confirmation.
func (d *Dialog) IsDelete() bool {
	return d != nil && d.Kind == KindDelete
}

// Service keeps the pending dialog of one workspace.
// Showing a dialog replaces whatever was pending.
type Service struct {
	mu      sync.Mutex
	pending *Dialog
}

// New creates an empty dialog service.
func New() *Service {
	return &Service{}
}

// Scope returns a dialog source bound to a resource scope.
func (s *Service) Scope(name string) *Scoped {
	return &Scoped{service: s, scope: name}
}

// Take returns the pending dialog and clears it.
func (s *Service) Take() *Dialog {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.pending
	s.pending = nil
	return d
}

func (s *Service) show(d *Dialog) {
	s.mu.Lock()
	s.pending = d
	s.mu.Unlock()
}

// Scoped opens dialogs on behalf of a single resource scope.
type Scoped struct {
	service *Service
	scope   string
}

// ShowDeleteDialog asks to confirm removal of the row at index.
func (s *Scoped) ShowDeleteDialog(index int, label string) {
	s.service.show(&Dialog{Kind: KindDelete, Scope: s.scope, Index: index, Message: label})
}

// ShowErrorDialog shows a non-blocking error notice.
func (s *Scoped) ShowErrorDialog(message string) {
	s.service.show(&Dialog{Kind: KindError, Scope: s.scope, Message: message})
}
