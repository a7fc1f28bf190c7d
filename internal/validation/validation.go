// Package validation checks user input before it is sent to the backend.
// The backend stays authoritative; these checks only catch obvious mistakes
// so a bad row is never applied optimistically.
package validation

import (
	"fmt"
	"net/netip"
	"strings"
	"unicode"

	"github.com/bcnelson/srvadm-console/internal/domain"
)

// MaxNameLength is the longest role or host name accepted.
const MaxNameLength = 64

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isNum(b byte) bool {
	return b >= '0' && b <= '9'
}

func isAlphaNum(b byte) bool {
	return isAlpha(b) || isNum(b)
}

// ValidateIP accepts a dotted-quad IPv4 address without leading zeros.
func ValidateIP(ip string) error {
	if ip == "" {
		return fmt.Errorf("ip address must not be empty")
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil || !addr.Is4() {
		return fmt.Errorf("must be a dotted-quad IPv4 address")
	}
	return nil
}

// ValidateRoleName accepts a non-empty name without whitespace or slashes.
func ValidateRoleName(name string) error {
	if name == "" {
		return fmt.Errorf("role must not be empty")
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("role must be at most %d characters", MaxNameLength)
	}
	if strings.ContainsFunc(name, unicode.IsSpace) {
		return fmt.Errorf("role must not contain whitespace")
	}
	if strings.Contains(name, "/") {
		return fmt.Errorf("role must not contain '/'")
	}
	return nil
}

// ValidateHostName accepts an RFC 1123 host name.
func ValidateHostName(name string) error {
	if name == "" {
		return fmt.Errorf("host name must not be empty")
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("host name must be at most %d characters", MaxNameLength)
	}
	for _, label := range strings.Split(name, ".") {
		if label == "" {
			return fmt.Errorf("host name must not contain empty labels")
		}
		if !isAlphaNum(label[0]) || !isAlphaNum(label[len(label)-1]) {
			return fmt.Errorf("host name labels must start and end with a letter or number")
		}
		for _, b := range []byte(label) {
			if !isAlphaNum(b) && b != '-' {
				return fmt.Errorf("host names can only contain letters, numbers, hyphens, or dots")
			}
		}
	}
	return nil
}

// ValidateIPAddress checks an IP row.
func ValidateIPAddress(ip domain.IPAddress) error {
	var errs ValidationErrors
	if err := ValidateIP(ip.IP); err != nil {
		errs.Add("ip", ip.IP, err.Error())
	}
	return errs.OrNil()
}

// ValidateRole checks a role row.
func ValidateRole(role domain.Role) error {
	var errs ValidationErrors
	if err := ValidateRoleName(role.Role); err != nil {
		errs.Add("role", role.Role, err.Error())
	}
	return errs.OrNil()
}

// ValidateHost checks every field of a host row.
func ValidateHost(host domain.Host) error {
	var errs ValidationErrors

	if err := ValidateHostName(host.HostName); err != nil {
		errs.Add("host_name", host.HostName, err.Error())
	}
	if err := ValidateIP(host.IP); err != nil {
		errs.Add("ip", host.IP, err.Error())
	}

	seen := make(map[string]bool, len(host.Role))
	for _, role := range host.Role {
		if err := ValidateRoleName(role); err != nil {
			errs.Add("role", role, err.Error())
			continue
		}
		if seen[role] {
			errs.Add("role", role, "role is listed more than once")
		}
		seen[role] = true
	}

	for _, ip := range host.ReloIP {
		if err := ValidateIP(ip); err != nil {
			errs.Add("relo_ip", ip, err.Error())
			continue
		}
		if ip == host.IP {
			errs.Add("relo_ip", ip, "relocation address must differ from the host address")
		}
	}

	return errs.OrNil()
}

// Is lets errors.Is match validation failures against domain.ErrInvalidInput.
func (e ValidationErrors) Is(target error) bool {
	return target == domain.ErrInvalidInput && len(e) > 0
}
