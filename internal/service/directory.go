package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/bcnelson/srvadm-console/internal/domain"
	"github.com/bcnelson/srvadm-console/internal/srvadm"
	"github.com/bcnelson/srvadm-console/internal/validation"
)

// LookupBy selects the field a host lookup matches on.
type LookupBy string

const (
	ByIP   LookupBy = "ip"
	ByRole LookupBy = "role"
	ByHost LookupBy = "host"
)

// ParseLookupBy parses a lookup field name.
func ParseLookupBy(s string) (LookupBy, error) {
	switch LookupBy(s) {
	case ByIP, ByRole, ByHost:
		return LookupBy(s), nil
	}
	return "", fmt.Errorf("unknown lookup field %q: %w", s, domain.ErrInvalidInput)
}

// Directory answers read-only host queries. It keeps no state.
type Directory struct {
	backend srvadm.Backend
}

// NewDirectory creates a Directory on top of backend.
func NewDirectory(backend srvadm.Backend) *Directory {
	return &Directory{backend: backend}
}

// Lookup returns the hosts matching q. A backend 404 means no hosts.
func (d *Directory) Lookup(ctx context.Context, by LookupBy, q string) ([]domain.Host, error) {
	var (
		path string
		err  error
	)
	switch by {
	case ByIP:
		err = validation.ValidateIP(q)
		path = srvadm.IPPath
	case ByRole:
		err = validation.ValidateRoleName(q)
		path = srvadm.RolePath
	case ByHost:
		err = validation.ValidateHostName(q)
		path = srvadm.HostPath
	default:
		return nil, fmt.Errorf("unknown lookup field %q: %w", by, domain.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", by, err, domain.ErrInvalidInput)
	}

	hosts := []domain.Host{}
	if err := d.backend.Get(ctx, path+"/"+url.PathEscape(q), &hosts); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []domain.Host{}, nil
		}
		return nil, fmt.Errorf("looking up hosts by %s: %w", by, err)
	}
	return hosts, nil
}

// HostsFile returns the hosts(5) lines the backend renders for role.
func (d *Directory) HostsFile(ctx context.Context, role string) (string, error) {
	if err := validation.ValidateRoleName(role); err != nil {
		return "", fmt.Errorf("role: %v: %w", err, domain.ErrInvalidInput)
	}
	text, err := d.backend.GetText(ctx, srvadm.HostsOutputPath+"/"+url.PathEscape(role))
	if err != nil {
		return "", fmt.Errorf("fetching hosts file for %s: %w", role, err)
	}
	return text, nil
}
