package service

import (
	"context"
	"sync"
	"time"

	"github.com/bcnelson/srvadm-console/internal/crud"
	"github.com/bcnelson/srvadm-console/internal/dialog"
	"github.com/bcnelson/srvadm-console/internal/domain"
	"github.com/bcnelson/srvadm-console/internal/srvadm"
	"github.com/sirupsen/logrus"
)

// Workspace is the state of one browser: a dialog service and one list
// per resource. Lists never share state with each other.
type Workspace struct {
	ID      string
	Dialogs *dialog.Service

	IPs   *crud.List[domain.IPAddress]
	Roles *crud.List[domain.Role]
	Hosts *crud.List[domain.Host]

	// AvailableIPs and RoleNames feed the host form.
	AvailableIPs *crud.Options
	RoleNames    *crud.Options

	mu       sync.Mutex
	lastSeen time.Time
}

// NewWorkspace creates a workspace with empty lists.
func NewWorkspace(id string, backend crud.Backend, log *logrus.Entry) (*Workspace, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithField("workspace", id)

	dialogs := dialog.New()

	ips, err := crud.NewList(IPResource(), backend, dialogs.Scope("ip"), log)
	if err != nil {
		return nil, err
	}
	roles, err := crud.NewList(RoleResource(), backend, dialogs.Scope("role"), log)
	if err != nil {
		return nil, err
	}
	hosts, err := crud.NewList(HostResource(), backend, dialogs.Scope("host"), log)
	if err != nil {
		return nil, err
	}

	return &Workspace{
		ID:           id,
		Dialogs:      dialogs,
		IPs:          ips,
		Roles:        roles,
		Hosts:        hosts,
		AvailableIPs: crud.NewOptions(backend, srvadm.UnusedIPPath),
		RoleNames:    crud.NewOptions(backend, srvadm.RoleNamesPath),
		lastSeen:     time.Now(),
	}, nil
}

// LoadAvailableIP refreshes the unused IP addresses offered by the host form.
func (w *Workspace) LoadAvailableIP(ctx context.Context) error {
	return w.AvailableIPs.Load(ctx)
}

// LoadRole refreshes the role names offered by the host form.
func (w *Workspace) LoadRole(ctx context.Context) error {
	return w.RoleNames.Load(ctx)
}

// Touch marks the workspace as used now.
func (w *Workspace) Touch(now time.Time) {
	w.mu.Lock()
	w.lastSeen = now
	w.mu.Unlock()
}

// LastSeen returns the time of the last request for this workspace.
func (w *Workspace) LastSeen() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeen
}
