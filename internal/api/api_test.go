package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bcnelson/srvadm-console/internal/api"
	"github.com/bcnelson/srvadm-console/internal/domain"
	"github.com/bcnelson/srvadm-console/internal/service"
	"github.com/bcnelson/srvadm-console/internal/srvadm"
	"github.com/sirupsen/logrus"
)

// testServer creates a test server backed by a file shim.
type testServer struct {
	handler http.Handler
	shim    *srvadm.FileShim
	logs    *bytes.Buffer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logs := &bytes.Buffer{}
	logger := logrus.New()
	logger.SetOutput(logs)
	logger.SetFormatter(&logrus.JSONFormatter{})
	log := logrus.NewEntry(logger)

	shim := srvadm.NewFileShim(filepath.Join(t.TempDir(), "backend.json"), log)
	sessions := service.NewSessions(shim, time.Hour, log)
	handler := api.NewRouter(sessions, service.NewDirectory(shim), log)

	return &testServer{handler: handler, shim: shim, logs: logs}
}

func (ts *testServer) request(method, path string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request("GET", "/health", nil)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}

	var resp map[string]string
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp["status"] != "ok" {
		t.Errorf("Expected status ok, got %s", resp["status"])
	}
}

func TestRootRedirectsToHosts(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request("GET", "/", nil)

	if rr.Code != http.StatusFound {
		t.Fatalf("Expected status 302, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/host" {
		t.Errorf("Expected redirect to /host, got %s", loc)
	}
}

func TestHostPageAgainstFileShim(t *testing.T) {
	ts := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	host := domain.Host{HostName: "web1", IP: "10.0.0.1", Role: []string{"web"}}
	if err := ts.shim.Save(ctx, srvadm.HostPath, "", host); err != nil {
		t.Fatalf("Seeding shim failed: %v", err)
	}

	rr := ts.request("GET", "/host", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "<td>web1</td>") {
		t.Error("Expected host web1 in the list")
	}

	rr = ts.request("GET", "/hosts-file/web", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if rr.Body.String() != "10.0.0.1\tweb1\n" {
		t.Errorf("Unexpected hosts file %q", rr.Body.String())
	}
}

func TestRequestsAreLogged(t *testing.T) {
	ts := newTestServer(t)

	ts.request("GET", "/role", nil)

	var entry map[string]any
	found := false
	for _, line := range strings.Split(strings.TrimSpace(ts.logs.String()), "\n") {
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if entry["component"] == "http" && entry["path"] == "/role" {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("Expected a request log line, got %s", ts.logs.String())
	}
	if entry["method"] != "GET" {
		t.Errorf("Expected method GET, got %v", entry["method"])
	}
	if entry["status"] != float64(http.StatusOK) {
		t.Errorf("Expected status 200, got %v", entry["status"])
	}
	if id, _ := entry["request_id"].(string); id == "" {
		t.Error("Expected a request id")
	}
}

func TestMalformedFormIsRejected(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request("POST", "/role/0/save", strings.NewReader("%zz"))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for a malformed form, got %d", rr.Code)
	}
}
