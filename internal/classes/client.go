package classes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	appLog "schedwidget/internal/log"
	"schedwidget/internal/model"
)

const classesPath = "/api/classes"

// HTTPClient is the subset of *http.Client used by Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches class lists from the classes API.
type Client struct {
	HTTP      HTTPClient
	UserAgent string
}

// NewClient returns a Client backed by a fresh http.Client. A zero timeout
// leaves the transport defaults in place.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		HTTP:      &http.Client{Timeout: timeout},
		UserAgent: "schedwidget",
	}
}

// ClassesURL builds {apiBase}/api/classes?start_date=..&end_date=.. with
// trailing slashes of apiBase removed.
func ClassesURL(apiBase, startDate, endDate string) string {
	return strings.TrimRight(apiBase, "/") + classesPath +
		"?start_date=" + EncodeURIComponent(startDate) +
		"&end_date=" + EncodeURIComponent(endDate)
}

// FetchClasses performs a single GET against the classes API and decodes
// the JSON array it returns. API order is preserved.
func (c *Client) FetchClasses(ctx context.Context, apiBase, startDate, endDate string) ([]model.ClassRecord, error) {
	u := ClassesURL(apiBase, startDate, endDate)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	appLog.Debug("classes fetch start", "url", appLog.RedactURL(u))

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	items, err := decodeClasses(body)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	appLog.Debug("classes fetch success", "url", appLog.RedactURL(u), "status", resp.StatusCode, "count", len(items))
	return items, nil
}

func decodeClasses(body []byte) ([]model.ClassRecord, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] != '[' {
		if !json.Valid(trimmed) {
			var v any
			return nil, json.Unmarshal(trimmed, &v)
		}
		return nil, errors.New("unexpected response format: expected a JSON array")
	}

	items := make([]model.ClassRecord, 0)
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// EncodeURIComponent escapes s for use as a query value. Unreserved marks
// (- _ . ! ~ * ' ( )) stay literal and spaces become %20.
func EncodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if isUnreserved(ch) {
			b.WriteByte(ch)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[ch>>4])
		b.WriteByte(hex[ch&0x0f])
	}
	return b.String()
}

func isUnreserved(ch byte) bool {
	switch {
	case 'a' <= ch && ch <= 'z', 'A' <= ch && ch <= 'Z', '0' <= ch && ch <= '9':
		return true
	}
	switch ch {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
