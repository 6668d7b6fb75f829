package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type member struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	DepartmentID int64  `json:"department_id"`
}

type card struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Company  string `json:"company"`
	Position string `json:"position"`
}

type record struct {
	ID          int64  `json:"id"`
	ContactDate string `json:"contact_date"`
	Location    string `json:"location"`
	Title       string `json:"title"`
	SummaryText string `json:"summary_text"`
	Status      int    `json:"status"`
	Persons     []card `json:"persons"`
}

// apiClient talks to the REST API with the stored bearer token.
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient(baseURL, token string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   strings.TrimSpace(token),
		http:    &http.Client{Timeout: 90 * time.Second},
	}
}

// call sends body as JSON and decodes a 2xx response into out. Error
// responses are returned as errors carrying the server's message.
func (c *apiClient) call(method, path string, body, out any) (int, error) {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, rdr)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error == "" {
			apiErr.Error = http.StatusText(resp.StatusCode)
		}
		return resp.StatusCode, fmt.Errorf("%s (HTTP %d)", apiErr.Error, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func getAPIURL() string {
	if url := os.Getenv("MEETLOG_API"); url != "" {
		return url
	}
	return "http://localhost:8080/api"
}

func tokenFile() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".meetlog", "token")
}

func saveToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(tokenFile()), 0o700); err != nil {
		return err
	}
	return os.WriteFile(tokenFile(), []byte(token), 0o600)
}

func loadToken() string {
	data, _ := os.ReadFile(tokenFile())
	return string(data)
}
