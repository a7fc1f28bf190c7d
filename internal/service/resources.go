package service

import (
	"slices"

	"github.com/bcnelson/srvadm-console/internal/crud"
	"github.com/bcnelson/srvadm-console/internal/domain"
	"github.com/bcnelson/srvadm-console/internal/srvadm"
)

// IPResource describes the IP address list.
func IPResource() crud.Resource[domain.IPAddress] {
	return crud.Resource[domain.IPAddress]{
		Name:       "ip",
		Path:       srvadm.IPPath,
		Noun:       "ip",
		DeleteHint: ". It is used.",
		Blank:      func() domain.IPAddress { return domain.IPAddress{} },
		Key:        func(ip *domain.IPAddress) string { return ip.IP },
		SetKey:     func(ip *domain.IPAddress, key string) { ip.IP = key },
		// The usage flag belongs to the backend.
		Apply: func(dst *domain.IPAddress, payload domain.IPAddress) {
			dst.IP = payload.IP
		},
		Transform: func(ip *domain.IPAddress) {
			ip.Usage = domain.UsageLabel(ip.IsUsed)
		},
	}
}

// RoleResource describes the role list.
func RoleResource() crud.Resource[domain.Role] {
	return crud.Resource[domain.Role]{
		Name:       "role",
		Path:       srvadm.RolePath,
		Noun:       "role",
		DeleteHint: ". It may be used.",
		Blank:      func() domain.Role { return domain.Role{} },
		Key:        func(r *domain.Role) string { return r.Role },
		SetKey:     func(r *domain.Role, key string) { r.Role = key },
	}
}

// HostResource describes the host list.
func HostResource() crud.Resource[domain.Host] {
	return crud.Resource[domain.Host]{
		Name:   "host",
		Path:   srvadm.HostPath,
		Noun:   "host",
		Blank:  func() domain.Host { return domain.Host{Role: []string{}} },
		Key:    func(h *domain.Host) string { return h.HostName },
		SetKey: func(h *domain.Host, key string) { h.HostName = key },
		Apply: func(dst *domain.Host, payload domain.Host) {
			dst.HostName = payload.HostName
			dst.IP = payload.IP
			dst.Role = slices.Clone(payload.Role)
			dst.ReloIP = slices.Clone(payload.ReloIP)
		},
	}
}
