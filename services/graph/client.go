// File: services/graph/client.go
package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"igbridge/models"

	"golang.org/x/oauth2"
)

const (
	DefaultTokenTimeout = 30 * time.Second
	DefaultPageTimeout  = 60 * time.Second

	maxResponseBodyBytes = 1 << 20 // 1 MiB

	pageFields = "connected_instagram_account,instagram_business_account"
)

var ErrMissingAccessToken = errors.New("response missing access_token")

// APIError is a non-2xx Graph API response.
type APIError struct {
	Status  int
	Message string
	Type    string
	Code    int
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("graph api returned status %d", e.Status)
	}
	if e.Type != "" {
		return fmt.Sprintf("graph api returned status %d: %s (%s, code %d)", e.Status, e.Message, e.Type, e.Code)
	}
	return fmt.Sprintf("graph api returned status %d: %s", e.Status, e.Message)
}

type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	TokenTimeout time.Duration
	PageTimeout  time.Duration

	// Optional transports, mostly for tests. Their Timeout is overridden.
	TokenHTTPClient *http.Client
	PageHTTPClient  *http.Client
}

// Client talks to the Facebook Graph API on behalf of one app.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	oauth        *oauth2.Config
	tokenHTTP    *http.Client
	pageHTTP     *http.Client
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	return &Client{
		baseURL:      baseURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint: oauth2.Endpoint{
				TokenURL:  baseURL + "/oauth/access_token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		tokenHTTP: withTimeout(cfg.TokenHTTPClient, cfg.TokenTimeout, DefaultTokenTimeout),
		pageHTTP:  withTimeout(cfg.PageHTTPClient, cfg.PageTimeout, DefaultPageTimeout),
	}
}

func withTimeout(base *http.Client, timeout, fallback time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = fallback
	}
	client := &http.Client{}
	if base != nil {
		copied := *base
		client = &copied
	}
	client.Timeout = timeout
	return client
}

// ExchangeCode trades an authorization code for a short-lived user token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.tokenHTTP)
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			return "", decodeAPIError(retrieveErr.Response.StatusCode, retrieveErr.Body)
		}
		return "", err
	}
	if token.AccessToken == "" {
		return "", ErrMissingAccessToken
	}
	return token.AccessToken, nil
}

// ExtendToken swaps a short-lived user token for a long-lived one.
func (c *Client) ExtendToken(ctx context.Context, shortToken string) (string, error) {
	params := url.Values{}
	params.Set("grant_type", "fb_exchange_token")
	params.Set("client_id", c.clientID)
	params.Set("client_secret", c.clientSecret)
	params.Set("fb_exchange_token", shortToken)

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.getJSON(ctx, c.tokenHTTP, "/oauth/access_token", params, &body); err != nil {
		return "", err
	}
	if body.AccessToken == "" {
		return "", ErrMissingAccessToken
	}
	return body.AccessToken, nil
}

// ListPages returns the Pages the user granted, in the order Graph lists them.
func (c *Client) ListPages(ctx context.Context, accessToken string) ([]models.PageCandidate, error) {
	params := url.Values{}
	params.Set("access_token", accessToken)

	var body struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, c.tokenHTTP, "/me/accounts", params, &body); err != nil {
		return nil, err
	}
	pages := make([]models.PageCandidate, 0, len(body.Data))
	for _, p := range body.Data {
		pages = append(pages, models.PageCandidate{ID: p.ID})
	}
	return pages, nil
}

// PageDetails looks up the Instagram account linked to a Page. The
// connected account wins over the business account when both are set.
func (c *Client) PageDetails(ctx context.Context, pageID, accessToken string) (models.PageCandidate, error) {
	params := url.Values{}
	params.Set("fields", pageFields)
	params.Set("access_token", accessToken)

	type linkedAccount struct {
		ID string `json:"id"`
	}
	var body struct {
		Connected *linkedAccount `json:"connected_instagram_account"`
		Business  *linkedAccount `json:"instagram_business_account"`
	}
	if err := c.getJSON(ctx, c.pageHTTP, "/"+url.PathEscape(pageID), params, &body); err != nil {
		return models.PageCandidate{}, err
	}

	page := models.PageCandidate{ID: pageID}
	if body.Connected != nil && body.Connected.ID != "" {
		page.BusinessAccountID = body.Connected.ID
	} else if body.Business != nil {
		page.BusinessAccountID = body.Business.ID
	}
	return page, nil
}

func (c *Client) getJSON(ctx context.Context, client *http.Client, path string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", scrubURLError(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes+1))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if len(body) > maxResponseBodyBytes {
		return fmt.Errorf("response exceeds %d bytes", maxResponseBodyBytes)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decodeAPIError(resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeAPIError(status int, body []byte) *APIError {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    int    `json:"code"`
		} `json:"error"`
	}
	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(body, &envelope); err == nil {
		apiErr.Message = envelope.Error.Message
		apiErr.Type = envelope.Error.Type
		apiErr.Code = envelope.Error.Code
	}
	return apiErr
}

// scrubURLError drops the request URL from transport errors; it carries the
// client secret and access tokens as query parameters.
func scrubURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}
