// Package digikey provides a client for the Digi-Key Product Search API v4.
package digikey

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the Digi-Key API operations used by the pipeline.
type Client interface {
	// ProductDetails fetches a single product record by manufacturer part number.
	ProductDetails(ctx context.Context, mpn string) (*Product, error)
	// KeywordSearch runs a keyword search, optionally with parametric filters.
	KeywordSearch(ctx context.Context, req KeywordRequest) ([]Product, error)
}

// Parameter is one parametric attribute on a product.
type Parameter struct {
	ParameterID   int    `json:"ParameterId"`
	ParameterText string `json:"ParameterText"`
	ValueID       string `json:"ValueId"`
	ValueText     string `json:"ValueText"`
}

// Product is the subset of the Digi-Key product record the pipeline uses.
type Product struct {
	ManufacturerProductNumber string `json:"ManufacturerProductNumber"`
	Manufacturer              struct {
		Name string `json:"Name"`
	} `json:"Manufacturer"`
	Description struct {
		ProductDescription  string `json:"ProductDescription"`
		DetailedDescription string `json:"DetailedDescription"`
	} `json:"Description"`
	ProductURL    string `json:"ProductUrl"`
	DatasheetURL  string `json:"DatasheetUrl"`
	ProductStatus struct {
		Status string `json:"Status"`
	} `json:"ProductStatus"`
	Category struct {
		Name string `json:"Name"`
	} `json:"Category"`
	QuantityAvailable int         `json:"QuantityAvailable"`
	Parameters        []Parameter `json:"Parameters"`
}

// ParameterFilter narrows a keyword search by one parameter. Id-based
// fields give the strongest matching; text fields are the fallback shape.
type ParameterFilter struct {
	ParameterID   string `json:"ParameterId,omitempty"`
	ValueID       string `json:"ValueId,omitempty"`
	ParameterText string `json:"ParameterText,omitempty"`
	ValueText     string `json:"ValueText,omitempty"`
	Value         string `json:"Value,omitempty"`
}

// Filters wraps the parametric filter list in the shape the API expects.
type Filters struct {
	ParameterFilters []ParameterFilter `json:"ParameterFilters,omitempty"`
}

// KeywordRequest is the body for the keyword search endpoint.
type KeywordRequest struct {
	Keywords              string            `json:"Keywords"`
	RecordCount           int               `json:"RecordCount"`
	Filters               *Filters          `json:"Filters,omitempty"`
	ParameterValueFilters []ParameterFilter `json:"ParameterValueFilters,omitempty"`
}

type keywordResponse struct {
	Products []Product `json:"Products"`
	// Older gateway deployments lower-case the field.
	ProductsAlt []Product `json:"products"`
}

type detailsResponse struct {
	Product Product `json:"Product"`
}

// APIError is a non-2xx response from the Digi-Key API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("digikey: status %d: %s", e.StatusCode, e.Body)
}

// AuthError is a failed OAuth token exchange. It always precedes the
// catalog call itself.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return "digikey: token exchange: " + e.Err.Error() }

func (e *AuthError) Unwrap() error { return e.Err }

// TokenSource supplies a bearer token for API calls. The concrete
// strategy is fixed at construction: a pre-issued token is used as-is,
// a client-credential pair goes through the OAuth exchange.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenSource returns a pre-issued access token without exchange.
type StaticTokenSource struct {
	AccessToken string
}

// Token returns the stored token.
func (s StaticTokenSource) Token(context.Context) (string, error) {
	return s.AccessToken, nil
}

// Option configures the Digi-Key client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithLocale sets the site and language headers sent with each request.
func WithLocale(site, language string) Option {
	return func(c *httpClient) {
		c.localeSite = site
		c.localeLang = language
	}
}

// WithRateLimit sets a per-second rate limit for API calls. A burst
// equal to the integer portion of rps is allowed.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

type httpClient struct {
	clientID   string
	tokens     TokenSource
	baseURL    string
	localeSite string
	localeLang string
	http       *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Digi-Key client. clientID is sent as the
// X-DIGIKEY-Client-Id header on every call; tokens supplies the bearer
// token per request.
func NewClient(clientID string, tokens TokenSource, opts ...Option) Client {
	c := &httpClient{
		clientID:   clientID,
		tokens:     tokens,
		baseURL:    "https://api.digikey.com",
		localeSite: "US",
		localeLang: "en",
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientCredentialsTokenSource creates a token source that exchanges
// a client id/secret pair for a short-lived access token and caches it
// until shortly before expiry. tokenURL defaults to the production
// OAuth endpoint when empty.
func NewClientCredentialsTokenSource(clientID, clientSecret, tokenURL string, hc *http.Client) TokenSource {
	if tokenURL == "" {
		tokenURL = "https://api.digikey.com/v1/oauth2/token"
	}
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &ccTokenSource{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     tokenURL,
		http:         hc,
	}
}

// retryableStatusCode returns true if the HTTP status code should trigger a retry.
func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

// do executes an authenticated request with bounded exponential backoff
// on transient statuses. The request body is re-marshaled per attempt.
func (c *httpClient) do(ctx context.Context, method, path string, reqBody any) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "digikey: rate limit")
		}
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	const maxAttempts = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		var bodyReader io.Reader
		if reqBody != nil {
			raw, err := json.Marshal(reqBody)
			if err != nil {
				return nil, eris.Wrap(err, "digikey: marshal request")
			}
			bodyReader = bytes.NewReader(raw)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
		if err != nil {
			return nil, eris.Wrap(err, "digikey: create request")
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("X-DIGIKEY-Client-Id", c.clientID)
		req.Header.Set("X-DIGIKEY-Locale-Site", c.localeSite)
		req.Header.Set("X-DIGIKEY-Locale-Language", c.localeLang)
		req.Header.Set("Accept", "application/json")
		if reqBody != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = eris.Wrap(err, "digikey: request failed")
			if attempt < maxAttempts {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(backoff):
				}
				backoff *= 2
				continue
			}
			return nil, lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, eris.Wrap(readErr, "digikey: read response body")
		}

		if retryableStatusCode(resp.StatusCode) && attempt < maxAttempts {
			lastErr = &APIError{StatusCode: resp.StatusCode, Body: string(body)}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
		}

		return body, nil
	}

	return nil, lastErr
}

func (c *httpClient) ProductDetails(ctx context.Context, mpn string) (*Product, error) {
	path := fmt.Sprintf("/products/v4/search/%s/productdetails", url.PathEscape(mpn))

	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var result detailsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "digikey: unmarshal product details")
	}

	return &result.Product, nil
}

func (c *httpClient) KeywordSearch(ctx context.Context, req KeywordRequest) ([]Product, error) {
	body, err := c.do(ctx, http.MethodPost, "/products/v4/search/keyword", req)
	if err != nil {
		return nil, err
	}

	var result keywordResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "digikey: unmarshal keyword search")
	}

	if len(result.Products) > 0 {
		return result.Products, nil
	}
	return result.ProductsAlt, nil
}
