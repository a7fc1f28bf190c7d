// Package crud implements the optimistic list controller shared by the
// IP, role and host screens.
package crud

import (
	"context"
	"errors"
	"fmt"

	"github.com/bcnelson/srvadm-console/internal/domain"
)

// ErrNoSuchRow is returned for an index outside the current list.
var ErrNoSuchRow = fmt.Errorf("no such row: %w", domain.ErrNotFound)

// Backend is the subset of the srvadm client a list needs.
type Backend interface {
	Get(ctx context.Context, path string, out any) error
	Save(ctx context.Context, path, key string, payload any) error
	Remove(ctx context.Context, path, key string) error
}

// Dialogs opens modals for a single resource scope.
type Dialogs interface {
	ShowDeleteDialog(index int, label string)
	ShowErrorDialog(message string)
}

// Resource describes one entity type served by the backend.
type Resource[T any] struct {
	// Name is the scope name, e.g. "ip".
	Name string
	// Path is the collection endpoint, e.g. "/api/ip".
	Path string
	// Noun names the entity in delete failure messages.
	Noun string
	// DeleteHint is appended to the delete failure message.
	DeleteHint string

	Blank  func() T
	Key    func(*T) string
	SetKey func(*T, string)

	// Apply copies the editable fields of payload onto a listed row.
	// When nil the whole row is replaced.
	Apply func(dst *T, payload T)
	// Transform derives display fields once per fetched row.
	Transform func(*T)
}

func (r Resource[T]) validate() error {
	switch {
	case r.Name == "":
		return errors.New("resource name is required")
	case r.Path == "":
		return fmt.Errorf("resource %s: path is required", r.Name)
	case r.Blank == nil, r.Key == nil, r.SetKey == nil:
		return fmt.Errorf("resource %s: Blank, Key and SetKey are required", r.Name)
	}
	return nil
}

func (r Resource[T]) apply(dst *T, payload T) {
	if r.Apply != nil {
		r.Apply(dst, payload)
		return
	}
	*dst = payload
}

func (r Resource[T]) deleteFailure(key string) string {
	return "Could not delete " + r.Noun + ": " + key + r.DeleteHint
}
