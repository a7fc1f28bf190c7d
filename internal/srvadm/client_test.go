package srvadm_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bcnelson/srvadm-console/internal/domain"
	"github.com/bcnelson/srvadm-console/internal/srvadm"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

// newTestBackend starts a backend that records requests and answers with status/body.
func newTestBackend(t *testing.T, status int, body string) (*srvadm.Client, *[]recordedRequest) {
	t.Helper()

	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		requests = append(requests, recordedRequest{Method: r.Method, Path: r.URL.EscapedPath(), Body: string(data)})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client, err := srvadm.New(srv.URL+"/", 0, nil)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return client, &requests
}

func TestNewRejectsInvalidBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
	}{
		{"no scheme", "localhost:8080"},
		{"unsupported scheme", "ftp://localhost"},
		{"no host", "http://"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := srvadm.New(tt.baseURL, 0, nil); err == nil {
				t.Errorf("Expected error for base URL %q", tt.baseURL)
			}
		})
	}
}

func TestGetDecodesEnvelope(t *testing.T) {
	client, requests := newTestBackend(t, http.StatusOK, `{"result":[{"ip":"10.0.0.1","is_used":0},{"ip":"10.0.0.2","is_used":1}]}`)

	var ips []domain.IPAddress
	if err := client.Get(context.Background(), srvadm.IPPath, &ips); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if len(ips) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(ips))
	}
	if ips[0].IP != "10.0.0.1" || ips[1].IP != "10.0.0.2" {
		t.Errorf("Expected server order to be preserved, got %+v", ips)
	}
	if ips[1].IsUsed != 1 {
		t.Errorf("Expected is_used 1, got %d", ips[1].IsUsed)
	}
	if (*requests)[0].Method != http.MethodGet || (*requests)[0].Path != "/api/ip" {
		t.Errorf("Expected GET /api/ip, got %s %s", (*requests)[0].Method, (*requests)[0].Path)
	}
}

func TestGetEmptyResult(t *testing.T) {
	client, _ := newTestBackend(t, http.StatusOK, `{}`)

	var roles []domain.Role
	if err := client.Get(context.Background(), srvadm.RolePath, &roles); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(roles) != 0 {
		t.Errorf("Expected no roles, got %d", len(roles))
	}
}

func TestSaveWithoutKeyCreates(t *testing.T) {
	client, requests := newTestBackend(t, http.StatusOK, `{"result":[{"message":"OK"}]}`)

	if err := client.Save(context.Background(), srvadm.IPPath, "", domain.IPAddress{IP: "10.0.0.2"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	req := (*requests)[0]
	if req.Method != http.MethodPost {
		t.Errorf("Expected POST, got %s", req.Method)
	}
	if req.Path != "/api/ip" {
		t.Errorf("Expected path /api/ip, got %s", req.Path)
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		t.Fatalf("Expected JSON body, got %q", req.Body)
	}
	if body["ip"] != "10.0.0.2" {
		t.Errorf("Expected ip 10.0.0.2 in body, got %v", body["ip"])
	}
	if _, ok := body["is_used"]; ok {
		t.Errorf("Expected is_used to be omitted from the payload, got %v", body["is_used"])
	}
}

func TestSaveWithKeyUpdates(t *testing.T) {
	client, requests := newTestBackend(t, http.StatusOK, `{"result":[]}`)

	if err := client.Save(context.Background(), srvadm.IPPath, "10.0.0.1", domain.IPAddress{IP: "10.0.0.9"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	req := (*requests)[0]
	if req.Method != http.MethodPut {
		t.Errorf("Expected PUT, got %s", req.Method)
	}
	if req.Path != "/api/ip/10.0.0.1" {
		t.Errorf("Expected path /api/ip/10.0.0.1, got %s", req.Path)
	}
}

func TestRemoveEscapesKey(t *testing.T) {
	client, requests := newTestBackend(t, http.StatusOK, `{"result":{}}`)

	if err := client.Remove(context.Background(), srvadm.RolePath, "web front"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	req := (*requests)[0]
	if req.Method != http.MethodDelete {
		t.Errorf("Expected DELETE, got %s", req.Method)
	}
	if req.Path != "/api/role/web%20front" {
		t.Errorf("Expected escaped path, got %s", req.Path)
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		sentinel error
	}{
		{"not found", http.StatusNotFound, domain.ErrNotFound},
		{"bad request", http.StatusBadRequest, domain.ErrInvalidInput},
		{"conflict", http.StatusConflict, domain.ErrConflict},
		{"server error", http.StatusInternalServerError, domain.ErrBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestBackend(t, tt.status, `{"message":"Could not complete your request."}`)

			err := client.Save(context.Background(), srvadm.HostPath, "web01", domain.Host{HostName: "web02"})
			if err == nil {
				t.Fatal("Expected error")
			}

			var reqErr *srvadm.RequestError
			if !errors.As(err, &reqErr) {
				t.Fatalf("Expected *RequestError, got %T", err)
			}
			if reqErr.StatusCode != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, reqErr.StatusCode)
			}
			if reqErr.Method != http.MethodPut {
				t.Errorf("Expected update failure, got method %s", reqErr.Method)
			}
			if reqErr.Message != "Could not complete your request." {
				t.Errorf("Expected backend message, got %q", reqErr.Message)
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("Expected errors.Is(err, %v)", tt.sentinel)
			}
			if srvadm.StatusCode(err) != tt.status {
				t.Errorf("Expected StatusCode %d, got %d", tt.status, srvadm.StatusCode(err))
			}
		})
	}
}

func TestTransportErrorHasNoStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	client, err := srvadm.New(srv.URL, 0, nil)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	srv.Close()

	var ips []domain.IPAddress
	err = client.Get(context.Background(), srvadm.IPPath, &ips)
	if err == nil {
		t.Fatal("Expected error from closed server")
	}
	if srvadm.StatusCode(err) != 0 {
		t.Errorf("Expected status 0, got %d", srvadm.StatusCode(err))
	}
	if srvadm.Method(err) != http.MethodGet {
		t.Errorf("Expected method GET, got %q", srvadm.Method(err))
	}
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Error("Expected errors.Is(err, ErrUnavailable)")
	}
}

func TestGetText(t *testing.T) {
	client, requests := newTestBackend(t, http.StatusOK, "10.0.0.1\tweb01\n10.0.0.2\tweb02\n")

	text, err := client.GetText(context.Background(), srvadm.HostsOutputPath+"/web")
	if err != nil {
		t.Fatalf("GetText failed: %v", err)
	}
	if text != "10.0.0.1\tweb01\n10.0.0.2\tweb02\n" {
		t.Errorf("Unexpected body %q", text)
	}
	if (*requests)[0].Path != "/api/hosts_output/web" {
		t.Errorf("Expected /api/hosts_output/web, got %s", (*requests)[0].Path)
	}
}
