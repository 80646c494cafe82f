// Package sanity talks to the hosted headless CMS over its HTTP API: GROQ
// queries, document mutations and asset uploads.
package sanity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"io.winapps.thankasoldier/internal/content"
)

const defaultAPIVersion = "2024-01-01"

// Config configures the CMS client.
type Config struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	Token      string
	UseCDN     bool

	// BaseURL overrides the project API host, mainly for tests.
	BaseURL    string
	HTTPClient *http.Client
}

// Client is a thin CMS HTTP client.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient validates cfg and returns a Client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.ProjectID == "" && cfg.BaseURL == "" {
		return nil, errors.New("sanity: project id is required")
	}
	if cfg.Dataset == "" {
		return nil, errors.New("sanity: dataset is required")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{cfg: cfg, httpClient: httpClient}, nil
}

// ProjectID returns the configured project id.
func (c *Client) ProjectID() string { return c.cfg.ProjectID }

// Dataset returns the configured dataset.
func (c *Client) Dataset() string { return c.cfg.Dataset }

func (c *Client) endpoint(cdn bool, path string) string {
	base := c.cfg.BaseURL
	if base == "" {
		host := "api.sanity.io"
		if cdn {
			host = "apicdn.sanity.io"
		}
		base = fmt.Sprintf("https://%s.%s", c.cfg.ProjectID, host)
	}
	return fmt.Sprintf("%s/v%s/%s/%s", strings.TrimRight(base, "/"), c.cfg.APIVersion, path, c.cfg.Dataset)
}

// Query runs a GROQ query and decodes its result into out. Parameters are
// passed as $name=<json> query arguments.
func (c *Client) Query(ctx context.Context, groq string, params map[string]any, out any) error {
	values := url.Values{}
	values.Set("query", groq)
	for name, value := range params {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode param %s: %w", name, err)
		}
		values.Set("$"+name, string(encoded))
	}

	// the CDN never sees drafts or private datasets, so only use it unauthenticated
	useCDN := c.cfg.UseCDN && c.cfg.Token == ""
	reqURL := c.endpoint(useCDN, "data/query") + "?" + values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	body, err := c.do(req, "query")
	if err != nil {
		return err
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return &content.StoreError{Op: "query", Code: "decode", Err: err}
	}
	if len(envelope.Result) == 0 || string(envelope.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return &content.StoreError{Op: "query", Code: "decode", Err: err}
	}
	return nil
}

// Create creates one document and returns its id.
func (c *Client) Create(ctx context.Context, doc map[string]any) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"mutations": []map[string]any{{"create": doc}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode mutation: %w", err)
	}

	reqURL := c.endpoint(false, "data/mutate") + "?returnIds=true&visibility=sync"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req, "mutate")
	if err != nil {
		return "", err
	}

	id := gjson.GetBytes(body, "results.0.id").String()
	if id == "" {
		return "", &content.StoreError{Op: "mutate", Code: "noResult", Err: errors.New("submission failed - no result returned")}
	}
	return id, nil
}

// Asset is an uploaded asset document.
type Asset struct {
	ID  string `json:"_id"`
	URL string `json:"url"`
}

// UploadImage uploads image bytes to the asset API.
func (c *Client) UploadImage(ctx context.Context, filename, contentType string, data []byte) (*Asset, error) {
	reqURL := c.endpoint(false, "assets/images")
	if filename != "" {
		reqURL += "?" + url.Values{"filename": {filename}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	body, err := c.do(req, "upload")
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Document Asset `json:"document"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &content.StoreError{Op: "upload", Code: "decode", Err: err}
	}
	if envelope.Document.ID == "" {
		return nil, &content.StoreError{Op: "upload", Code: "noResult", Err: errors.New("upload returned no asset")}
	}
	return &envelope.Document, nil
}

func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &content.StoreError{Op: op, Code: "network", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &content.StoreError{Op: op, Code: "network", Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode >= 300 {
		return nil, apiError(op, resp.StatusCode, body)
	}
	return body, nil
}

// apiError extracts the error description and type from a CMS error body.
// Both {"error":{"description","type"}} and {"error","message"} shapes occur.
func apiError(op string, status int, body []byte) error {
	parsed := gjson.ParseBytes(body)

	code := parsed.Get("error.type").String()
	msg := parsed.Get("error.description").String()
	if msg == "" {
		msg = parsed.Get("message").String()
	}
	if code == "" {
		if e := parsed.Get("error"); e.Type == gjson.String {
			code = e.String()
		}
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	if code == "" {
		code = fmt.Sprintf("http_%d", status)
	}

	return &content.StoreError{Op: op, Code: code, Status: status, Err: errors.New(msg)}
}
