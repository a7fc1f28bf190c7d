package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/bcnelson/srvadm-console/internal/domain"
)

func TestValidateIP(t *testing.T) {
	tests := []struct {
		name    string
		ip      string
		wantErr bool
	}{
		{"private address", "192.168.1.1", false},
		{"single digits", "1.1.1.1", false},
		{"broadcast", "255.255.255.255", false},
		{"zero octet", "10.0.0.0", false},
		{"empty", "", true},
		{"leading zero", "092.168.1.1", true},
		{"octet too long", "192.168.1.1111", true},
		{"three octets", "192.168.1", true},
		{"five octets", "192.168.1.1.1", true},
		{"letter", "192.168.1.a", true},
		{"out of range", "256.1.1.1", true},
		{"ipv6", "::1", true},
		{"mapped ipv4", "::ffff:10.0.0.1", true},
		{"cidr", "10.0.0.0/8", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIP(tt.ip)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIP(%q) error = %v, wantErr %v", tt.ip, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRoleName(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		wantErr bool
	}{
		{"simple", "web", false},
		{"with hyphen and digits", "db-2", false},
		{"with underscore", "log_shipper", false},
		{"empty", "", true},
		{"contains space", "web front", true},
		{"contains slash", "web/front", true},
		{"contains tab", "web\tfront", true},
		{"contains vertical tab", "web\vfront", true},
		{"contains non-breaking space", "web\u00a0front", true},
		{"too long", strings.Repeat("r", MaxNameLength+1), true},
		{"max length", strings.Repeat("r", MaxNameLength), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRoleName(tt.role)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRoleName(%q) error = %v, wantErr %v", tt.role, err, tt.wantErr)
			}
		})
	}
}

func TestValidateHostName(t *testing.T) {
	tests := []struct {
		name    string
		host    string
		wantErr bool
	}{
		{"simple", "web01", false},
		{"fqdn", "web01.example.com", false},
		{"starts with digit", "1web", false},
		{"hyphen inside", "web-01", false},
		{"empty", "", true},
		{"leading hyphen", "-web", true},
		{"trailing hyphen", "web-", true},
		{"empty label", "web..example", true},
		{"trailing dot", "web.", true},
		{"underscore", "web_01", true},
		{"space", "web 01", true},
		{"too long", strings.Repeat("h", MaxNameLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHostName(tt.host)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateHostName(%q) error = %v, wantErr %v", tt.host, err, tt.wantErr)
			}
		})
	}
}

func TestValidateHost(t *testing.T) {
	tests := []struct {
		name       string
		host       domain.Host
		wantFields []string
	}{
		{
			name: "valid",
			host: domain.Host{HostName: "web01", IP: "10.0.0.1", Role: []string{"web", "db"}, ReloIP: []string{"10.0.1.1"}},
		},
		{
			name: "no roles",
			host: domain.Host{HostName: "web01", IP: "10.0.0.1"},
		},
		{
			name:       "bad name and ip",
			host:       domain.Host{HostName: "web_01", IP: "10.0.0"},
			wantFields: []string{"host_name", "ip"},
		},
		{
			name:       "duplicate role",
			host:       domain.Host{HostName: "web01", IP: "10.0.0.1", Role: []string{"web", "web"}},
			wantFields: []string{"role"},
		},
		{
			name:       "relocation equals primary",
			host:       domain.Host{HostName: "web01", IP: "10.0.0.1", ReloIP: []string{"10.0.0.1"}},
			wantFields: []string{"relo_ip"},
		},
		{
			name:       "invalid relocation",
			host:       domain.Host{HostName: "web01", IP: "10.0.0.1", ReloIP: []string{"nope"}},
			wantFields: []string{"relo_ip"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHost(tt.host)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}

			var errs ValidationErrors
			if !errors.As(err, &errs) {
				t.Fatalf("Expected ValidationErrors, got %T", err)
			}
			if len(errs) != len(tt.wantFields) {
				t.Fatalf("Expected %d errors, got %d: %v", len(tt.wantFields), len(errs), errs.Summary())
			}
			for i, field := range tt.wantFields {
				if errs[i].Field != field {
					t.Errorf("Error %d: expected field %s, got %s", i, field, errs[i].Field)
				}
			}
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Error("Expected validation errors to match ErrInvalidInput")
			}
		})
	}
}

func TestValidateIPAddressAndRole(t *testing.T) {
	if err := ValidateIPAddress(domain.IPAddress{IP: "10.0.0.2"}); err != nil {
		t.Errorf("Expected valid ip row, got %v", err)
	}
	if err := ValidateIPAddress(domain.IPAddress{IP: "010.0.0.2"}); err == nil {
		t.Error("Expected error for leading zero")
	}
	if err := ValidateRole(domain.Role{Role: "web"}); err != nil {
		t.Errorf("Expected valid role row, got %v", err)
	}
	if err := ValidateRole(domain.Role{}); err == nil {
		t.Error("Expected error for empty role")
	}
}

func TestValidationErrorsSummary(t *testing.T) {
	var errs ValidationErrors
	if errs.OrNil() != nil {
		t.Error("Expected nil for empty collection")
	}
	errs.Add("ip", "x", "bad")
	errs.Add("role", "", "required")

	want := `ip "x": bad; role: required`
	if got := errs.Summary(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
	if got := errs.Error(); got != `ip "x": bad (and 1 more errors)` {
		t.Errorf("Unexpected error text: %q", got)
	}
}
