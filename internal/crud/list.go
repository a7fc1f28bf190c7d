package crud

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/bcnelson/srvadm-console/internal/srvadm"
	"github.com/sirupsen/logrus"
)

// Messages shown when a request fails.
const (
	msgLoadFailed   = "Could not get data from api. HTTP status: %d"
	msgAddFailed    = "Could not add"
	msgUpdateFailed = "Could not update"
)

// List is the client-side copy of one backend collection.
//
// Mutations are applied locally first and reconciled when the backend
// answers. The mutex only guards the slice; it is never held across a
// backend call, so overlapping requests reconcile in arrival order.
type List[T any] struct {
	res     Resource[T]
	backend Backend
	dialogs Dialogs
	log     *logrus.Entry

	mu       sync.Mutex
	items    []*T
	inserted *T
}

// NewList creates an empty list for res.
func NewList[T any](res Resource[T], backend Backend, dialogs Dialogs, log *logrus.Entry) (*List[T], error) {
	if err := res.validate(); err != nil {
		return nil, err
	}
	if backend == nil {
		return nil, fmt.Errorf("resource %s: backend is required", res.Name)
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &List[T]{
		res:     res,
		backend: backend,
		dialogs: dialogs,
		log:     log.WithField("resource", res.Name),
	}, nil
}

// Resource returns the descriptor the list was built with.
func (l *List[T]) Resource() Resource[T] {
	return l.res
}

// Load replaces the list with the backend collection.
// On failure the list is left empty and an error dialog is shown.
func (l *List[T]) Load(ctx context.Context) error {
	var fetched []T
	if err := l.backend.Get(ctx, l.res.Path, &fetched); err != nil {
		l.mu.Lock()
		l.items = nil
		l.inserted = nil
		l.mu.Unlock()

		l.showError(fmt.Sprintf(msgLoadFailed, srvadm.StatusCode(err)))
		return fmt.Errorf("loading %s: %w", l.res.Name, err)
	}

	items := make([]*T, len(fetched))
	for i := range fetched {
		item := fetched[i]
		if l.res.Transform != nil {
			l.res.Transform(&item)
		}
		items[i] = &item
	}

	l.mu.Lock()
	l.items = items
	l.inserted = nil
	l.mu.Unlock()

	l.log.WithField("count", len(items)).Debug("Loaded list")
	return nil
}

// Add appends a blank row that is not yet persisted and returns its index.
func (l *List[T]) Add() int {
	blank := l.res.Blank()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, &blank)
	l.inserted = &blank
	return len(l.items) - 1
}

// Save applies payload to the row at index and sends it to the backend.
// An empty key creates, anything else updates the entity with that key.
//
// A failed create removes the row added by Add. A failed update only
// restores the natural key of the row; other edited fields keep their
// new values.
func (l *List[T]) Save(ctx context.Context, index int, key string, payload T) error {
	l.mu.Lock()
	if index < 0 || index >= len(l.items) {
		l.mu.Unlock()
		return ErrNoSuchRow
	}
	row := l.items[index]
	l.res.apply(row, payload)
	l.mu.Unlock()

	err := l.backend.Save(ctx, l.res.Path, key, payload)

	method := srvadm.Method(err)
	if method == "" {
		method = http.MethodPost
		if key != "" {
			method = http.MethodPut
		}
	}

	if err == nil {
		if method == http.MethodPost {
			l.mu.Lock()
			if l.inserted == row {
				l.inserted = nil
			}
			l.mu.Unlock()
		}
		return nil
	}

	switch method {
	case http.MethodPost:
		l.mu.Lock()
		if l.inserted != nil {
			l.items = removeRow(l.items, l.inserted)
			l.inserted = nil
		}
		l.mu.Unlock()
		l.showError(msgAddFailed)
	case http.MethodPut:
		l.mu.Lock()
		l.res.SetKey(row, key)
		l.mu.Unlock()
		l.showError(msgUpdateFailed)
	}

	return fmt.Errorf("saving %s: %w", l.res.Name, err)
}

// ConfirmDelete asks the user to confirm removal of the row at index.
func (l *List[T]) ConfirmDelete(index int) error {
	l.mu.Lock()
	if index < 0 || index >= len(l.items) {
		l.mu.Unlock()
		return ErrNoSuchRow
	}
	label := l.res.Key(l.items[index])
	l.mu.Unlock()

	if l.dialogs != nil {
		l.dialogs.ShowDeleteDialog(index, label)
	}
	return nil
}

// Remove deletes the row at index from the backend and, on success, from the list.
// On failure the list is left unchanged. A row added but never saved is
// dropped locally.
func (l *List[T]) Remove(ctx context.Context, index int) error {
	return l.remove(ctx, index, nil)
}

// RemoveKey is Remove guarded by the key the user confirmed. It returns
// ErrNoSuchRow when the row at index now holds a different entity.
func (l *List[T]) RemoveKey(ctx context.Context, index int, key string) error {
	return l.remove(ctx, index, &key)
}

func (l *List[T]) remove(ctx context.Context, index int, expect *string) error {
	l.mu.Lock()
	if index < 0 || index >= len(l.items) {
		l.mu.Unlock()
		return ErrNoSuchRow
	}
	row := l.items[index]
	key := l.res.Key(row)
	if expect != nil && *expect != key {
		l.mu.Unlock()
		return ErrNoSuchRow
	}
	if l.inserted == row {
		l.items = removeRow(l.items, row)
		l.inserted = nil
		l.mu.Unlock()
		return nil
	}
	l.mu.Unlock()

	if err := l.backend.Remove(ctx, l.res.Path, key); err != nil {
		l.showError(l.res.deleteFailure(key))
		return fmt.Errorf("removing %s %q: %w", l.res.Name, key, err)
	}

	l.mu.Lock()
	l.items = removeRow(l.items, row)
	if l.inserted == row {
		l.inserted = nil
	}
	l.mu.Unlock()
	return nil
}

// Items returns a copy of the current rows.
func (l *List[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]T, len(l.items))
	for i, item := range l.items {
		out[i] = *item
	}
	return out
}

// Item returns a copy of the row at index.
func (l *List[T]) Item(index int) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if index < 0 || index >= len(l.items) {
		var zero T
		return zero, ErrNoSuchRow
	}
	return *l.items[index], nil
}

// Len returns the number of rows.
func (l *List[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Pending returns the index of the row added by Add that has not been
// created yet, or -1.
func (l *List[T]) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inserted == nil {
		return -1
	}
	for i, item := range l.items {
		if item == l.inserted {
			return i
		}
	}
	return -1
}

func (l *List[T]) showError(message string) {
	l.log.WithField("message", message).Debug("Showing error dialog")
	if l.dialogs != nil {
		l.dialogs.ShowErrorDialog(message)
	}
}

// removeRow drops row from items by identity.
func removeRow[T any](items []*T, row *T) []*T {
	for i, item := range items {
		if item == row {
			return append(items[:i:i], items[i+1:]...)
		}
	}
	return items
}
