package web

import (
	"context"
	"net/url"
	"slices"
	"strings"

	"github.com/bcnelson/srvadm-console/internal/crud"
	"github.com/bcnelson/srvadm-console/internal/domain"
	"github.com/bcnelson/srvadm-console/internal/service"
	"github.com/bcnelson/srvadm-console/internal/validation"
)

// ResourceMeta holds metadata about a resource type.
type ResourceMeta struct {
	Name     string
	Singular string
	Plural   string
	Columns  []string
	Fields   []FieldMeta
}

// FieldMeta describes a form field for a resource.
type FieldMeta struct {
	Name              string
	Label             string
	Type              string // "text", "textarea", "select", "checkboxes"
	Required          bool
	Help              string
	Placeholder       string
	ValidationPattern string // HTML5 pattern attribute for client-side validation
	ValidationMessage string // Error message shown when validation fails
}

// SelectOption is an option for select and checkbox fields.
type SelectOption struct {
	Value string
	Label string
}

// FieldView is a form field with its current value and choices.
type FieldView struct {
	FieldMeta
	Value   string
	Values  []string
	Options []SelectOption
}

// RowView is one rendered row of a resource list.
type RowView struct {
	Index   int
	Key     string // Natural key to update by; empty for a row not yet created
	Cells   []string
	Editing bool
	Fields  []FieldView
}

// ResourcePageData holds data for the resource page.
type ResourcePageData struct {
	Resource ResourceMeta
	Rows     []RowView
}

const ipPattern = `^((25[0-5]|2[0-4][0-9]|1[0-9]{2}|[1-9]?[0-9])\.){3}(25[0-5]|2[0-4][0-9]|1[0-9]{2}|[1-9]?[0-9])$`

// resourceTypes maps resource names to their metadata.
var resourceTypes = map[string]ResourceMeta{
	"ip": {
		Name:     "ip",
		Singular: "IP Address",
		Plural:   "IP Addresses",
		Columns:  []string{"IP", "Used"},
		Fields: []FieldMeta{
			{Name: "ip", Label: "IP", Type: "text", Required: true, Placeholder: "10.0.0.1",
				ValidationPattern: ipPattern,
				ValidationMessage: "Must be a dotted-quad IPv4 address without leading zeros"},
		},
	},
	"role": {
		Name:     "role",
		Singular: "Role",
		Plural:   "Roles",
		Columns:  []string{"Role"},
		Fields: []FieldMeta{
			{Name: "role", Label: "Role", Type: "text", Required: true, Placeholder: "web",
				ValidationPattern: `^[^\s/]{1,64}$`,
				ValidationMessage: "Up to 64 characters, no whitespace or slashes"},
		},
	},
	"host": {
		Name:     "host",
		Singular: "Host",
		Plural:   "Hosts",
		Columns:  []string{"Host Name", "IP", "Roles", "Relocation IPs"},
		Fields: []FieldMeta{
			{Name: "host_name", Label: "Host Name", Type: "text", Required: true, Placeholder: "web01",
				ValidationPattern: `^[a-zA-Z0-9]([a-zA-Z0-9\-\.]{0,62}[a-zA-Z0-9])?$`,
				ValidationMessage: "Letters, numbers, hyphens and dots; must start and end with a letter or number"},
			{Name: "ip", Label: "IP", Type: "select", Required: true, Help: "Unused addresses only"},
			{Name: "role", Label: "Roles", Type: "checkboxes"},
			{Name: "relo_ip", Label: "Relocation IPs", Type: "textarea", Help: "One address per line", Placeholder: "10.0.1.1"},
		},
	},
}

// resourceView is the type-erased face of a binding used by the handlers.
type resourceView interface {
	Meta() ResourceMeta
	Load(ctx context.Context) error
	Prepare(ctx context.Context)
	Add() int
	// Save returns validation.ValidationErrors without touching the list
	// when the form is invalid.
	Save(ctx context.Context, index int, form url.Values) error
	ConfirmDelete(index int) error
	// Remove deletes the row at index. A non-empty key must match the row.
	Remove(ctx context.Context, index int, key string) error
	Page(editing int, draft url.Values) ResourcePageData
}

// binding connects a workspace list to its form and table.
type binding[T any] struct {
	meta     ResourceMeta
	list     *crud.List[T]
	decode   func(form url.Values) T
	validate func(T) error
	cells    func(T) []string
	values   func(T) url.Values
	// prepare loads auxiliary options before a form is shown.
	prepare func(ctx context.Context) error
	// options returns the choices of select and checkbox fields.
	options func(field string, current []string) []SelectOption
}

func (b *binding[T]) Meta() ResourceMeta {
	return b.meta
}

func (b *binding[T]) Load(ctx context.Context) error {
	return b.list.Load(ctx)
}

func (b *binding[T]) Prepare(ctx context.Context) {
	if b.prepare == nil {
		return
	}
	// Failures leave the previous options in place.
	_ = b.prepare(ctx)
}

func (b *binding[T]) Add() int {
	return b.list.Add()
}

func (b *binding[T]) Save(ctx context.Context, index int, form url.Values) error {
	payload := b.decode(form)
	if err := b.validate(payload); err != nil {
		return err
	}
	return b.list.Save(ctx, index, form.Get("key"), payload)
}

func (b *binding[T]) ConfirmDelete(index int) error {
	return b.list.ConfirmDelete(index)
}

func (b *binding[T]) Remove(ctx context.Context, index int, key string) error {
	if key == "" {
		return b.list.Remove(ctx, index)
	}
	return b.list.RemoveKey(ctx, index, key)
}

func (b *binding[T]) Page(editing int, draft url.Values) ResourcePageData {
	items := b.list.Items()
	pending := b.list.Pending()
	key := b.list.Resource().Key

	rows := make([]RowView, len(items))
	for i := range items {
		row := RowView{
			Index: i,
			Key:   key(&items[i]),
			Cells: b.cells(items[i]),
		}
		if i == pending {
			row.Key = ""
		}
		if i == editing {
			values := b.values(items[i])
			if draft != nil {
				values = draft
			}
			row.Editing = true
			row.Fields = b.fields(values)
		}
		rows[i] = row
	}

	return ResourcePageData{Resource: b.meta, Rows: rows}
}

func (b *binding[T]) fields(values url.Values) []FieldView {
	fields := make([]FieldView, len(b.meta.Fields))
	for i, meta := range b.meta.Fields {
		current := values[meta.Name]
		f := FieldView{FieldMeta: meta, Value: values.Get(meta.Name), Values: current}
		if b.options != nil && (meta.Type == "select" || meta.Type == "checkboxes") {
			f.Options = b.options(meta.Name, current)
		}
		fields[i] = f
	}
	return fields
}

// bindings returns the views over a workspace's lists.
func bindings(ws *service.Workspace) map[string]resourceView {
	return map[string]resourceView{
		"ip": &binding[domain.IPAddress]{
			meta: resourceTypes["ip"],
			list: ws.IPs,
			decode: func(form url.Values) domain.IPAddress {
				return domain.IPAddress{IP: strings.TrimSpace(form.Get("ip"))}
			},
			validate: validation.ValidateIPAddress,
			cells: func(ip domain.IPAddress) []string {
				return []string{ip.IP, ip.Usage}
			},
			values: func(ip domain.IPAddress) url.Values {
				return url.Values{"ip": {ip.IP}}
			},
		},
		"role": &binding[domain.Role]{
			meta: resourceTypes["role"],
			list: ws.Roles,
			decode: func(form url.Values) domain.Role {
				return domain.Role{Role: strings.TrimSpace(form.Get("role"))}
			},
			validate: validation.ValidateRole,
			cells: func(r domain.Role) []string {
				return []string{r.Role}
			},
			values: func(r domain.Role) url.Values {
				return url.Values{"role": {r.Role}}
			},
		},
		"host": &binding[domain.Host]{
			meta:     resourceTypes["host"],
			list:     ws.Hosts,
			decode:   decodeHost,
			validate: validation.ValidateHost,
			cells: func(h domain.Host) []string {
				return []string{h.HostName, h.IP, strings.Join(h.Role, ", "), strings.Join(h.ReloIP, ", ")}
			},
			values: func(h domain.Host) url.Values {
				return url.Values{
					"host_name": {h.HostName},
					"ip":        {h.IP},
					"role":      slices.Clone(h.Role),
					"relo_ip":   slices.Clone(h.ReloIP),
				}
			},
			prepare: func(ctx context.Context) error {
				errIP := ws.LoadAvailableIP(ctx)
				errRole := ws.LoadRole(ctx)
				if errIP != nil {
					return errIP
				}
				return errRole
			},
			options: func(field string, current []string) []SelectOption {
				switch field {
				case "ip":
					return selectOptions(ws.AvailableIPs.Values(), current)
				case "role":
					return selectOptions(ws.RoleNames.Values(), current)
				}
				return nil
			},
		},
	}
}

func decodeHost(form url.Values) domain.Host {
	host := domain.Host{
		HostName: strings.TrimSpace(form.Get("host_name")),
		IP:       strings.TrimSpace(form.Get("ip")),
		Role:     []string{},
	}
	for _, role := range form["role"] {
		if role = strings.TrimSpace(role); role != "" {
			host.Role = append(host.Role, role)
		}
	}
	for _, v := range form["relo_ip"] {
		host.ReloIP = append(host.ReloIP, parseLines(v)...)
	}
	return host
}

// selectOptions lists the current values first so a row keeps its own
// address even though it is no longer unused.
func selectOptions(available, current []string) []SelectOption {
	seen := make(map[string]bool, len(available)+len(current))
	opts := make([]SelectOption, 0, len(available)+len(current))
	for _, v := range append(slices.Clone(current), available...) {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		opts = append(opts, SelectOption{Value: v, Label: v})
	}
	return opts
}

// parseLines splits a textarea into trimmed, non-empty lines.
func parseLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
