package srvadm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Collection paths served by the backend.
const (
	IPPath          = "/api/ip"
	RolePath        = "/api/role"
	HostPath        = "/api/host"
	UnusedIPPath    = "/api/list/ip/unused"
	RoleNamesPath   = "/api/list/role"
	HostsOutputPath = "/api/hosts_output"
)

// collectionKeys maps each collection path to its natural key field.
var collectionKeys = map[string]string{
	IPPath:   "ip",
	RolePath: "role",
	HostPath: "host_name",
}

// FileShim is a development stand-in for the backend that keeps the
// collections in a JSON file. It carries no business rules.
type FileShim struct {
	filePath string
	log      *logrus.Entry
	mu       sync.Mutex
}

// Ensure FileShim implements Backend.
var _ Backend = (*FileShim)(nil)

type shimData map[string][]map[string]any

// NewFileShim creates a new file-based backend stand-in.
func NewFileShim(filePath string, log *logrus.Entry) *FileShim {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &FileShim{
		filePath: filePath,
		log:      log.WithField("component", "file-shim"),
	}
}

// Get returns a collection, one of the name projections or a host lookup.
func (f *FileShim) Get(ctx context.Context, path string, out any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		return &RequestError{Method: http.MethodGet, URL: path, StatusCode: http.StatusInternalServerError, Err: err}
	}

	var result any
	switch path {
	case IPPath, RolePath, HostPath:
		records := data[path]
		if records == nil {
			records = []map[string]any{}
		}
		result = records
	case UnusedIPPath:
		names := []string{}
		for _, rec := range data[IPPath] {
			if used, _ := rec["is_used"].(float64); used == 0 {
				names = append(names, fmt.Sprint(rec["ip"]))
			}
		}
		result = names
	case RoleNamesPath:
		names := []string{}
		for _, rec := range data[RolePath] {
			names = append(names, fmt.Sprint(rec["role"]))
		}
		result = names
	default:
		hosts := matchHosts(data[HostPath], path)
		if len(hosts) == 0 {
			return &RequestError{Method: http.MethodGet, URL: path, StatusCode: http.StatusNotFound, Message: "Not found"}
		}
		result = hosts
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return &RequestError{Method: http.MethodGet, URL: path, StatusCode: http.StatusInternalServerError, Err: err}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &RequestError{Method: http.MethodGet, URL: path, StatusCode: http.StatusOK, Err: fmt.Errorf("decoding result: %w", err)}
	}
	return nil
}

// Save creates or replaces a record keyed by its natural key.
func (f *FileShim) Save(ctx context.Context, path, key string, payload any) error {
	method := http.MethodPost
	if key != "" {
		method = http.MethodPut
	}

	keyField, ok := collectionKeys[path]
	if !ok {
		return &RequestError{Method: method, URL: path, StatusCode: http.StatusNotFound, Message: "Not found"}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return &RequestError{Method: method, URL: path, Err: err}
	}
	var rec map[string]any
	if err := json.Unmarshal(raw, &rec); err != nil {
		return &RequestError{Method: method, URL: path, StatusCode: http.StatusBadRequest, Message: "Check the format you requested"}
	}
	newKey, _ := rec[keyField].(string)
	if newKey == "" {
		return &RequestError{Method: method, URL: path, StatusCode: http.StatusBadRequest, Message: "Check the format you requested"}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		return &RequestError{Method: method, URL: path, StatusCode: http.StatusInternalServerError, Err: err}
	}

	records := data[path]
	existing := indexOf(records, keyField, key)
	if key != "" && existing < 0 {
		return &RequestError{Method: method, URL: path + "/" + key, StatusCode: http.StatusNotFound, Message: "Not found"}
	}
	if dup := indexOf(records, keyField, newKey); dup >= 0 && dup != existing {
		return &RequestError{Method: method, URL: path, StatusCode: http.StatusConflict, Message: "already exists"}
	}

	if existing >= 0 {
		for k, v := range rec {
			records[existing][k] = v
		}
	} else {
		records = append(records, rec)
	}
	data[path] = records

	if err := f.write(data); err != nil {
		return &RequestError{Method: method, URL: path, StatusCode: http.StatusInternalServerError, Err: err}
	}

	f.log.WithFields(logrus.Fields{"method": method, "path": path, "key": newKey}).Debug("Record saved")
	return nil
}

// Remove deletes a record by natural key.
func (f *FileShim) Remove(ctx context.Context, path, key string) error {
	keyField, ok := collectionKeys[path]
	if !ok {
		return &RequestError{Method: http.MethodDelete, URL: path, StatusCode: http.StatusNotFound, Message: "Not found"}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		return &RequestError{Method: http.MethodDelete, URL: path, StatusCode: http.StatusInternalServerError, Err: err}
	}

	records := data[path]
	i := indexOf(records, keyField, key)
	if i < 0 {
		return &RequestError{Method: http.MethodDelete, URL: path + "/" + key, StatusCode: http.StatusNotFound, Message: "Not found"}
	}
	data[path] = append(records[:i], records[i+1:]...)

	if err := f.write(data); err != nil {
		return &RequestError{Method: http.MethodDelete, URL: path, StatusCode: http.StatusInternalServerError, Err: err}
	}
	return nil
}

// GetText renders the hosts file of a role.
func (f *FileShim) GetText(ctx context.Context, path string) (string, error) {
	role, ok := strings.CutPrefix(path, HostsOutputPath+"/")
	if !ok {
		return "", &RequestError{Method: http.MethodGet, URL: path, StatusCode: http.StatusNotFound, Message: "Not found"}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		return "", &RequestError{Method: http.MethodGet, URL: path, StatusCode: http.StatusInternalServerError, Err: err}
	}

	hosts := matchHosts(data[HostPath], RolePath+"/"+role)
	if len(hosts) == 0 {
		return "", &RequestError{Method: http.MethodGet, URL: path, StatusCode: http.StatusNotFound, Message: "Not found"}
	}

	var b strings.Builder
	for _, h := range hosts {
		fmt.Fprintf(&b, "%v\t%v\n", h["ip"], h["host_name"])
	}
	return b.String(), nil
}

// matchHosts answers the single-entity lookups, /api/ip/{ip},
// /api/role/{role} and /api/host/{name}, which all return hosts.
func matchHosts(hosts []map[string]any, path string) []map[string]any {
	var match func(map[string]any, string) bool
	var q string
	switch {
	case strings.HasPrefix(path, IPPath+"/"):
		q = strings.TrimPrefix(path, IPPath+"/")
		match = func(h map[string]any, q string) bool { return h["ip"] == q }
	case strings.HasPrefix(path, RolePath+"/"):
		q = strings.TrimPrefix(path, RolePath+"/")
		match = func(h map[string]any, q string) bool {
			roles, _ := h["role"].([]any)
			for _, r := range roles {
				if r == q {
					return true
				}
			}
			return false
		}
	case strings.HasPrefix(path, HostPath+"/"):
		q = strings.TrimPrefix(path, HostPath+"/")
		match = func(h map[string]any, q string) bool { return h["host_name"] == q }
	default:
		return nil
	}

	if unescaped, err := url.PathUnescape(q); err == nil {
		q = unescaped
	}

	var out []map[string]any
	for _, h := range hosts {
		if match(h, q) {
			out = append(out, h)
		}
	}
	return out
}

// read loads the data file. A missing file is an empty backend.
func (f *FileShim) read() (shimData, error) {
	raw, err := os.ReadFile(f.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return shimData{}, nil
		}
		return nil, fmt.Errorf("reading shim file: %w", err)
	}

	data := shimData{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing shim file: %w", err)
	}
	return data, nil
}

func (f *FileShim) write(data shimData) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling shim data: %w", err)
	}
	if err := os.WriteFile(f.filePath, raw, 0644); err != nil {
		return fmt.Errorf("writing shim file: %w", err)
	}
	return nil
}

func indexOf(records []map[string]any, field, key string) int {
	if key == "" {
		return -1
	}
	for i, rec := range records {
		if v, _ := rec[field].(string); v == key {
			return i
		}
	}
	return -1
}
