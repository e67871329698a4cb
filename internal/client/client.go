// Package client is the HTTP client the CLI uses to talk to a running
// entropymem server.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"
)

const (
	defaultServerURL = "http://127.0.0.1:39777"
	httpTimeout      = 5 * time.Second
)

// Client talks to the entropymem server.
type Client struct {
	http      *http.Client
	serverURL string
}

// New creates a client. Respects the ENTROPYMEM_URL env var, falls back
// to http://127.0.0.1:39777.
func New() *Client {
	url := os.Getenv("ENTROPYMEM_URL")
	if url == "" {
		url = defaultServerURL
	}
	return &Client{
		http:      &http.Client{Timeout: httpTimeout},
		serverURL: url,
	}
}

// Put stores content in the record. Returns the number of bytes the
// server accepted (the input may have been truncated).
func (c *Client) Put(content []byte) (int, error) {
	req, err := http.NewRequest(http.MethodPut, c.serverURL+"/api/record", bytes.NewReader(content))
	if err != nil {
		return 0, fmt.Errorf("build put request: %w", err)
	}
	req.ContentLength = int64(len(content))

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("PUT /api/record: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return 0, fmt.Errorf("PUT /api/record: status %d: %s", resp.StatusCode, data)
	}

	var body struct {
		Accepted int `json:"accepted"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	return body.Accepted, nil
}

// Get reads up to max bytes of (possibly decayed) content from offset.
// max <= 0 means "no client-side cap".
func (c *Client) Get(offset, max int) ([]byte, error) {
	url := c.serverURL + "/api/record?offset=" + strconv.Itoa(offset)
	if max > 0 {
		url += "&max=" + strconv.Itoa(max)
	}

	resp, err := c.http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("GET /api/record: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("GET /api/record: status %d: %s", resp.StatusCode, data)
	}
	return data, nil
}

// Clear empties the record.
func (c *Client) Clear() error {
	req, err := http.NewRequest(http.MethodDelete, c.serverURL+"/api/record", nil)
	if err != nil {
		return fmt.Errorf("build clear request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("DELETE /api/record: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("DELETE /api/record: status %d: %s", resp.StatusCode, data)
	}
	return nil
}

// State describes the record as reported by the server.
type State struct {
	State      string `json:"state"`
	Length     int    `json:"length"`
	Decayed    int    `json:"decayed"`
	WrittenAt  string `json:"written_at"`
	AgeSeconds int64  `json:"age_seconds"`
}

// RecordState fetches the record's decay state.
func (c *Client) RecordState() (*State, error) {
	data, err := c.getJSON("/api/record/state")
	if err != nil {
		return nil, err
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &st, nil
}

// Stats fetches the journal aggregates as raw JSON for display.
func (c *Client) Stats() ([]byte, error) {
	return c.getJSON("/api/stats")
}

// Healthy checks if the server is reachable.
func (c *Client) Healthy() bool {
	resp, err := c.http.Get(c.serverURL + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (c *Client) getJSON(path string) ([]byte, error) {
	resp, err := c.http.Get(c.serverURL + path)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response %s: %w", path, err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, data)
	}
	return data, nil
}
