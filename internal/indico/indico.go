// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package indico fetches event exports from an Indico server.
package indico

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/qm-fetch/internal/httputil"
	"github.com/pdiddy/qm-fetch/pkg/types"
)

// DefaultBaseURL is the CERN Indico instance hosting the QM series.
const DefaultBaseURL = "https://indico.cern.ch"

// Payload is an event export as returned by Indico. Top-level values are
// kept as raw JSON so the document is stored without interpretation.
type Payload map[string]json.RawMessage

// RemoteFetchError reports a transport failure or a non-2xx response.
// StatusCode is zero when no response was received.
type RemoteFetchError struct {
	IndicoID   string
	StatusCode int
	Err        error
}

func (e *RemoteFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching event %s: HTTP %d", e.IndicoID, e.StatusCode)
	}
	return fmt.Sprintf("fetching event %s: %v", e.IndicoID, e.Err)
}

func (e *RemoteFetchError) Unwrap() error { return e.Err }

// MalformedResponseError reports a response body that is not a JSON object.
type MalformedResponseError struct {
	IndicoID string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("decoding event %s: %v", e.IndicoID, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// Client fetches event exports.
type Client struct {
	http *http.Client
	cfg  types.HTTPConfig
}

// NewClient returns a Client using hc for transport. An empty BaseURL in
// cfg selects DefaultBaseURL.
func NewClient(hc *http.Client, cfg types.HTTPConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{http: hc, cfg: cfg}
}

// EventURL returns the JSON export URL for an event id.
func (c *Client) EventURL(id string) string {
	return c.cfg.BaseURL + "/export/event/" + url.PathEscape(id) + ".json"
}

// FetchEvent downloads and decodes the export for one event.
func (c *Client) FetchEvent(ctx context.Context, id string) (Payload, error) {
	headers := map[string]string{"Accept": "application/json"}
	if c.cfg.UserAgent != "" {
		headers["User-Agent"] = c.cfg.UserAgent
	}
	if c.cfg.APIToken != "" {
		headers["Authorization"] = "Bearer " + c.cfg.APIToken
	}

	body, err := httputil.Get(ctx, c.http, c.EventURL(id), headers)
	if err != nil {
		fetchErr := &RemoteFetchError{IndicoID: id, Err: err}
		var sErr *httputil.StatusError
		if errors.As(err, &sErr) {
			fetchErr.StatusCode = sErr.StatusCode
		}
		return nil, fetchErr
	}

	payload, err := Decode(body)
	if err != nil {
		return nil, &MalformedResponseError{IndicoID: id, Err: err}
	}
	return payload, nil
}

// Decode parses body as a JSON object.
func Decode(body []byte) (Payload, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("empty body")
	}
	if trimmed[0] != '{' {
		return nil, errors.New("top-level value is not a JSON object")
	}
	var p Payload
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return nil, err
	}
	return p, nil
}
