package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// maxResponseBytes caps how much of the OCR response is read.
const maxResponseBytes = 1 << 20

var fieldPattern = regexp.MustCompile(`(\w+)='([^']*)'`)

// Client calls the remote national-id OCR endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{endpoint: endpoint, http: &http.Client{Timeout: timeout}}
}

type extractRequest struct {
	FrontBase64 string `json:"front_base64"`
	BackBase64  string `json:"back_base64"`
}

// Extract posts both card sides and returns the raw key/value fields the
// endpoint recognised.
func (c *Client) Extract(ctx context.Context, frontBase64, backBase64 string) (map[string]string, error) {
	body, err := json.Marshal(extractRequest{FrontBase64: frontBase64, BackBase64: backBase64})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build ocr request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ocr request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read ocr response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("ocr endpoint returned %d", resp.StatusCode)
	}
	return ParseFields(decodeBody(raw)), nil
}

// decodeBody unwraps a JSON string body; anything else is used verbatim.
func decodeBody(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	return string(trimmed)
}

// ParseFields reads key='value' pairs. Later duplicates win.
func ParseFields(s string) map[string]string {
	out := make(map[string]string)
	for _, m := range fieldPattern.FindAllStringSubmatch(s, -1) {
		out[m[1]] = strings.TrimSpace(m[2])
	}
	return out
}
