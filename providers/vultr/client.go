// Package vultr implements the zonesync provider interface for Vultr DNS.
package vultr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"gitlab.bluewillows.net/root/zonesync/internal/metrics"
	"gitlab.bluewillows.net/root/zonesync/pkg/httputil"
	"gitlab.bluewillows.net/root/zonesync/pkg/provider"
)

const (
	// DefaultAPIEndpoint is the base URL for the Vultr API v2.
	DefaultAPIEndpoint = "https://api.vultr.com/v2"

	// listPageSize is the per_page value for paginated list endpoints.
	// Vultr allows up to 500; 100 keeps responses small.
	listPageSize = 100

	// placeholderIP is sent when creating a domain, since the Vultr API
	// requires a default IP address. TEST-NET-1, never routable.
	placeholderIP = "192.0.2.1"
)

// domain is a DNS zone as the Vultr API represents it.
type domain struct {
	Domain      string `json:"domain"`
	DateCreated string `json:"date_created"`
	DNSSec      string `json:"dns_sec"`
}

// dnsRecord is a single record entry as the Vultr API represents it.
// Multi-value generic records appear as multiple entries sharing name and
// type. Priority is only meaningful for MX and SRV; Vultr reports -1 for
// other kinds.
type dnsRecord struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	Data     string `json:"data"`
	Priority int    `json:"priority"`
	TTL      int    `json:"ttl"`
}

type meta struct {
	Total int `json:"total"`
	Links struct {
		Next string `json:"next"`
		Prev string `json:"prev"`
	} `json:"links"`
}

type domainResponse struct {
	Domain domain `json:"domain"`
}

type domainsResponse struct {
	Domains []domain `json:"domains"`
	Meta    meta     `json:"meta"`
}

type recordsResponse struct {
	Records []dnsRecord `json:"records"`
	Meta    meta        `json:"meta"`
}

type createDomainRequest struct {
	Domain string `json:"domain"`
	IP     string `json:"ip"`
}

// createRecordRequest is the request body for creating a DNS record.
// Priority is a pointer so that a legitimate priority of 0 is still sent
// for MX and SRV records.
type createRecordRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Data     string `json:"data"`
	TTL      int    `json:"ttl,omitempty"`
	Priority *int   `json:"priority,omitempty"`
}

// Client is a Vultr DNS API client.
type Client struct {
	apiEndpoint string
	token       string
	instance    string
	httpClient  *http.Client
	logger      *slog.Logger
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithAPIEndpoint sets a custom API endpoint (useful for testing).
func WithAPIEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		c.apiEndpoint = endpoint
	}
}

// WithInstance sets the provider instance name used in metrics labels.
func WithInstance(name string) ClientOption {
	return func(c *Client) {
		if name != "" {
			c.instance = name
		}
	}
}

// NewClient creates a new Vultr API client.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		apiEndpoint: DefaultAPIEndpoint,
		token:       token,
		instance:    "vultr",
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = httputil.NewClient(&httputil.ClientConfig{Logger: c.logger})
	}

	return c
}

// doRequest performs an HTTP request against the Vultr API and maps the
// response status onto the provider error taxonomy: 401/403 is an
// authentication failure, 404 is not-found, 429 is rate limiting that
// survived the HTTP layer's retries, and any other non-2xx surfaces as an
// UnexpectedError carrying the response payload.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	reqURL := c.apiEndpoint + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	c.logger.Debug("making API request",
		slog.String("method", method),
		slog.String("path", path),
	)

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	metrics.APIRequests.WithLabelValues(c.instance, method, strconv.Itoa(resp.StatusCode)).Inc()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", provider.ErrAuthentication, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return nil, provider.ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: retries exhausted", provider.ErrRateLimited)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &provider.UnexpectedError{
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	return respBody, nil
}

// GetDomain checks that a zone exists on Vultr. Returns ErrNotFound when it
// does not.
func (c *Client) GetDomain(ctx context.Context, name string) error {
	body, err := c.doRequest(ctx, http.MethodGet, "/domains/"+name, nil, nil)
	if err != nil {
		return err
	}
	var resp domainResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("parsing domain response: %w", err)
	}
	return nil
}

// CreateDomain creates a zone on Vultr. The API requires a default IP
// address; a TEST-NET-1 placeholder is used, the seeded records are subject
// to the next sync like any other hosted state.
func (c *Client) CreateDomain(ctx context.Context, name string) error {
	_, err := c.doRequest(ctx, http.MethodPost, "/domains", nil, createDomainRequest{
		Domain: name,
		IP:     placeholderIP,
	})
	if err != nil {
		return fmt.Errorf("creating domain %s: %w", name, err)
	}

	c.logger.Info("created domain", slog.String("domain", name))
	return nil
}

// ListDomains returns the names of all zones hosted on the account,
// following pagination cursors until exhausted.
func (c *Client) ListDomains(ctx context.Context) ([]string, error) {
	var names []string
	cursor := ""
	for {
		query := url.Values{}
		query.Set("per_page", strconv.Itoa(listPageSize))
		if cursor != "" {
			query.Set("cursor", cursor)
		}

		body, err := c.doRequest(ctx, http.MethodGet, "/domains", query, nil)
		if err != nil {
			return nil, fmt.Errorf("listing domains: %w", err)
		}

		var resp domainsResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("parsing domains response: %w", err)
		}
		for _, d := range resp.Domains {
			names = append(names, d.Domain)
		}

		cursor = resp.Meta.Links.Next
		if cursor == "" {
			return names, nil
		}
	}
}

// ListRecords returns all record entries in a zone, following pagination
// cursors until exhausted. Apex entries are normalized from "@" to the
// empty string.
func (c *Client) ListRecords(ctx context.Context, name string) ([]dnsRecord, error) {
	var records []dnsRecord
	cursor := ""
	for {
		query := url.Values{}
		query.Set("per_page", strconv.Itoa(listPageSize))
		if cursor != "" {
			query.Set("cursor", cursor)
		}

		body, err := c.doRequest(ctx, http.MethodGet, "/domains/"+name+"/records", query, nil)
		if err != nil {
			return nil, err
		}

		var resp recordsResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("parsing records response: %w", err)
		}
		for _, r := range resp.Records {
			if r.Name == "@" {
				r.Name = ""
			}
			records = append(records, r)
		}

		cursor = resp.Meta.Links.Next
		if cursor == "" {
			break
		}
	}

	c.logger.Debug("listed records",
		slog.String("domain", name),
		slog.Int("count", len(records)),
	)
	return records, nil
}

// CreateRecord creates a single record entry in a zone. Apex names are sent
// as "@" per the Vultr convention.
func (c *Client) CreateRecord(ctx context.Context, name string, req createRecordRequest) error {
	if req.Name == "" {
		req.Name = "@"
	}

	_, err := c.doRequest(ctx, http.MethodPost, "/domains/"+name+"/records", nil, req)
	if err != nil {
		return fmt.Errorf("creating %s record %q: %w", req.Type, req.Name, err)
	}

	c.logger.Info("created DNS record",
		slog.String("domain", name),
		slog.String("type", req.Type),
		slog.String("name", req.Name),
		slog.String("data", req.Data),
		slog.Int("ttl", req.TTL),
	)
	return nil
}

// DeleteRecord deletes a record entry by its provider-assigned id.
func (c *Client) DeleteRecord(ctx context.Context, name, recordID string) error {
	_, err := c.doRequest(ctx, http.MethodDelete, "/domains/"+name+"/records/"+recordID, nil, nil)
	if err != nil {
		return fmt.Errorf("deleting record %s: %w", recordID, err)
	}

	c.logger.Info("deleted DNS record",
		slog.String("domain", name),
		slog.String("record_id", recordID),
	)
	return nil
}
