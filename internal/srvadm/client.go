package srvadm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bcnelson/srvadm-console/internal/domain"
	"github.com/sirupsen/logrus"
)

// Backend defines the calls the console makes against the srvadm REST API.
type Backend interface {
	// Get fetches path and decodes the "result" member of the envelope into out.
	Get(ctx context.Context, path string, out any) error
	// Save creates when key is empty and updates path/key otherwise.
	Save(ctx context.Context, path, key string, payload any) error
	// Remove deletes path/key.
	Remove(ctx context.Context, path, key string) error
	// GetText fetches path and returns the raw body.
	GetText(ctx context.Context, path string) (string, error)
}

// Client talks to the srvadm backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logrus.Entry
}

// Ensure Client implements Backend.
var _ Backend = (*Client)(nil)

// New creates a new backend client for baseURL.
// A zero timeout leaves the HTTP stack default in place.
func New(baseURL string, timeout time.Duration, log *logrus.Entry) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL %q must be http or https: %w", baseURL, domain.ErrInvalidInput)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base URL %q has no host: %w", baseURL, domain.ErrInvalidInput)
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log.WithField("component", "srvadm-client"),
	}, nil
}

// Get fetches a list endpoint.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	body, err := c.do(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	var env domain.Envelope[json.RawMessage]
	if err := json.Unmarshal(body, &env); err != nil {
		return &RequestError{Method: http.MethodGet, URL: c.baseURL + path, StatusCode: http.StatusOK, Err: fmt.Errorf("decoding envelope: %w", err)}
	}
	if len(env.Result) == 0 {
		env.Result = json.RawMessage("[]")
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return &RequestError{Method: http.MethodGet, URL: c.baseURL + path, StatusCode: http.StatusOK, Err: fmt.Errorf("decoding result: %w", err)}
	}
	return nil
}

// Save issues POST path when key is empty, PUT path/key otherwise.
func (c *Client) Save(ctx context.Context, path, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	method := http.MethodPost
	target := c.baseURL + path
	if key != "" {
		method = http.MethodPut
		target = c.keyURL(path, key)
	}

	_, err = c.do(ctx, method, target, data)
	return err
}

// Remove issues DELETE path/key.
func (c *Client) Remove(ctx context.Context, path, key string) error {
	_, err := c.do(ctx, http.MethodDelete, c.keyURL(path, key), nil)
	return err
}

// GetText fetches a non-JSON endpoint.
func (c *Client) GetText(ctx context.Context, path string) (string, error) {
	body, err := c.do(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) keyURL(path, key string) string {
	return c.baseURL + path + "/" + url.PathEscape(key)
}

// do performs a single request. Non-2xx responses become a *RequestError.
func (c *Client) do(ctx context.Context, method, target string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, &RequestError{Method: method, URL: target, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithFields(logrus.Fields{"method": method, "url": target}).WithError(err).Warn("Backend request failed")
		return nil, &RequestError{Method: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Method: method, URL: target, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading body: %w", err)}
	}

	fields := logrus.Fields{
		"method":   method,
		"url":      target,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reqErr := &RequestError{Method: method, URL: target, StatusCode: resp.StatusCode}
		var eb domain.ErrorBody
		if json.Unmarshal(body, &eb) == nil {
			reqErr.Message = eb.Message
		}
		c.log.WithFields(fields).WithField("message", reqErr.Message).Warn("Backend returned error")
		return nil, reqErr
	}

	c.log.WithFields(fields).Debug("Backend request")
	return body, nil
}
