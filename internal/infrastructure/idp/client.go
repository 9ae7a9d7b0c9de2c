package idp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/brightcart/backend/internal/domain/integration"
)

// maxResponseSize is the maximum allowed response size from the identity provider (10MB)
const maxResponseSize = 10 * 1024 * 1024

// maxDirectoryPages caps the listing loop so a provider that keeps
// returning page tokens cannot spin the fetcher forever
const maxDirectoryPages = 1000

// Client implements the IdentityProvider port against the hosted identity
// provider's REST API. It holds no credential state; every call carries the
// credential of the acting principal, and the provider decides what that
// credential is allowed to see.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// NewClient creates a new identity provider client with the given configuration
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, integration.ErrProviderNotConfigured
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// ---------------------------------------------------------------------------
// Directory Operations
// ---------------------------------------------------------------------------

// FetchVisibleIdentities walks the paged directory listing and returns every
// identity the credential can read. A non-privileged credential typically
// yields a single-element result; that is a valid snapshot, not an error.
func (c *Client) FetchVisibleIdentities(ctx context.Context, cred integration.Credential) ([]integration.IdentityRecord, error) {
	if err := cred.Validate(); err != nil {
		return nil, err
	}

	records := make([]integration.IdentityRecord, 0)
	pageToken := ""

	for page := 0; page < maxDirectoryPages; page++ {
		query := url.Values{}
		query.Set("page_size", strconv.Itoa(c.config.PageSize))
		if pageToken != "" {
			query.Set("page_token", pageToken)
		}

		body, err := c.doRequest(ctx, http.MethodGet, "/api/v1/identities?"+query.Encode(), cred, nil)
		if err != nil {
			return nil, err
		}

		var listing IdentityListResponse
		if err := json.Unmarshal(body, &listing); err != nil {
			return nil, fmt.Errorf("%w: failed to parse identity listing: %v", integration.ErrProviderInvalidResponse, err)
		}

		for i := range listing.Identities {
			records = append(records, listing.Identities[i].ToRecord())
		}

		if listing.NextPageToken == "" {
			return records, nil
		}
		pageToken = listing.NextPageToken
	}

	return nil, fmt.Errorf("%w: directory listing exceeded %d pages", integration.ErrProviderInvalidResponse, maxDirectoryPages)
}

// GetIdentity fetches a single identity by its provider-assigned ID
func (c *Client) GetIdentity(ctx context.Context, cred integration.Credential, externalID string) (*integration.IdentityRecord, error) {
	if err := cred.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(externalID) == "" {
		return nil, integration.ErrIdentityNotFound
	}

	body, err := c.doRequest(ctx, http.MethodGet, "/api/v1/identities/"+url.PathEscape(externalID), cred, nil)
	if err != nil {
		return nil, err
	}

	var identity Identity
	if err := json.Unmarshal(body, &identity); err != nil {
		return nil, fmt.Errorf("%w: failed to parse identity: %v", integration.ErrProviderInvalidResponse, err)
	}

	record := identity.ToRecord()
	return &record, nil
}

// UpdateRoleMetadata patches the role key in the identity's metadata bag,
// leaving every other key in the bag alone
func (c *Client) UpdateRoleMetadata(ctx context.Context, cred integration.Credential, update integration.RoleUpdate) error {
	if err := cred.Validate(); err != nil {
		return err
	}
	if err := update.Validate(); err != nil {
		return err
	}

	payload := MetadataUpdateRequest{
		Metadata: map[string]string{metadataRoleKey: update.Role},
	}
	requestBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("idp: failed to encode metadata update: %w", err)
	}

	path := "/api/v1/identities/" + url.PathEscape(update.ExternalID) + "/metadata"
	_, err = c.doRequest(ctx, http.MethodPatch, path, cred, bytes.NewReader(requestBody))
	return err
}

// ---------------------------------------------------------------------------
// HTTP Plumbing
// ---------------------------------------------------------------------------

// doRequest performs an HTTP request against the provider and returns the raw
// response body. Transport failures and non-2xx statuses are mapped onto the
// integration error sentinels so callers classify outcomes without seeing HTTP.
func (c *Client) doRequest(ctx context.Context, method, path string, cred integration.Credential, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("idp: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrProviderUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	responseBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", integration.ErrProviderUnavailable, err)
	}

	if resp.StatusCode >= 400 {
		return nil, mapStatusError(resp.StatusCode, responseBody)
	}

	return responseBody, nil
}

// mapStatusError translates a non-2xx provider status into a sentinel error.
// 5xx means the provider is down and the operation may be retried; 401/403
// mean the credential cannot act; 404 means the identity is gone or outside
// the credential's visibility.
func mapStatusError(status int, body []byte) error {
	detail := errorDetailSuffix(body)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: HTTP %d%s", integration.ErrProviderAuthFailed, status, detail)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: HTTP %d%s", integration.ErrIdentityNotFound, status, detail)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: HTTP %d%s", integration.ErrProviderRateLimited, status, detail)
	case status >= 500:
		return fmt.Errorf("%w: HTTP %d%s", integration.ErrProviderUnavailable, status, detail)
	default:
		return fmt.Errorf("%w: HTTP %d%s", integration.ErrProviderRequestFailed, status, detail)
	}
}

// errorDetailSuffix extracts the provider's error code and message when the
// body carries the standard error envelope, empty string otherwise
func errorDetailSuffix(body []byte) string {
	var envelope ErrorResponse
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error.Code == "" {
		return ""
	}
	if envelope.Error.Message != "" {
		return fmt.Sprintf(" (%s - %s)", envelope.Error.Code, envelope.Error.Message)
	}
	return fmt.Sprintf(" (%s)", envelope.Error.Code)
}

// Ensure Client implements the IdentityProvider interface
var _ integration.IdentityProvider = (*Client)(nil)
