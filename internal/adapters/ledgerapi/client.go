// Package ledgerapi talks to the remote ledger service over its JSON batch and query
// endpoints.
package ledgerapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
	"github.com/SscSPs/ledger_sync/internal/core/ports/ledger"
	"github.com/SscSPs/ledger_sync/internal/middleware"
)

// DefaultRequestTimeout bounds one round trip when no timeout is configured.
const DefaultRequestTimeout = 30 * time.Second

// Client is a ledger.Service backed by the remote HTTP API of one realm.
type Client struct {
	baseURL    string
	realmID    string
	httpClient *http.Client
	timeout    time.Duration
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client, e.g. one carrying oauth2 credentials.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient creates a client for realmID rooted at baseURL.
func NewClient(baseURL, realmID string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		realmID:    realmID,
		httpClient: http.DefaultClient,
		timeout:    DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ ledger.Service = (*Client)(nil)

// OAuth2Credentials are the app credentials and the long-lived refresh token of a realm.
type OAuth2Credentials struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	RefreshToken string
}

// NewOAuth2HTTPClient returns an HTTP client that attaches a bearer token, refreshing it
// from the refresh token whenever it expires.
func NewOAuth2HTTPClient(ctx context.Context, creds OAuth2Credentials) *http.Client {
	conf := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  creds.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
	return conf.Client(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken})
}

// CreateBatch implements ledger.Service.
func (c *Client) CreateBatch() ledger.Batch {
	return newBatch(c)
}

func (c *Client) companyURL(path string) string {
	return fmt.Sprintf("%s/v3/company/%s/%s", c.baseURL, url.PathEscape(c.realmID), path)
}

// query runs a single select statement outside of a batch.
func (c *Client) query(ctx context.Context, statement string) (*queryResponse, error) {
	endpoint := c.companyURL("query") + "?query=" + url.QueryEscape(statement)
	var envelope struct {
		QueryResponse *queryResponse `json:"QueryResponse"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.QueryResponse == nil {
		return &queryResponse{}, nil
	}
	return envelope.QueryResponse, nil
}

// do sends one request under the client deadline and decodes a 2xx JSON body into out.
func (c *Client) do(ctx context.Context, method, endpoint string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: encoding request: %v", apperrors.ErrInternal, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("%w: building request: %v", apperrors.ErrInternal, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger := middleware.GetLoggerFromCtx(ctx)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s %s after %s", apperrors.ErrTimeout, method, req.URL.Path, c.timeout)
		}
		return apperrors.NewAppError(http.StatusBadGateway, "ledger service unreachable",
			fmt.Errorf("%w: %v", apperrors.ErrExternalService, err))
	}
	defer resp.Body.Close()

	logger.Debug("Ledger service call",
		slog.String("method", method),
		slog.String("path", req.URL.Path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("latency", time.Since(start)))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: reading %s response", apperrors.ErrTimeout, req.URL.Path)
		}
		return fmt.Errorf("%w: reading response: %v", apperrors.ErrExternalService, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperrors.NewAppError(resp.StatusCode, "ledger service rejected the request",
			fmt.Errorf("%w: %s", apperrors.ErrExternalService, describeFailure(resp.StatusCode, raw)))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", apperrors.ErrProtocolViolation, err)
	}
	return nil
}

// describeFailure prefers the structured fault of an error body over the raw status.
func describeFailure(status int, raw []byte) string {
	var envelope struct {
		Fault *faultPayload `json:"Fault"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Fault != nil && len(envelope.Fault.Errors) > 0 {
		return envelope.Fault.toFault().String()
	}
	return fmt.Sprintf("status %d", status)
}
