// Package mouser provides a client for the Mouser Search API.
package mouser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the Mouser Search API operations used by the pipeline.
type Client interface {
	// SearchByPartNumber looks up parts matching a manufacturer part number.
	SearchByPartNumber(ctx context.Context, mpn string) ([]Part, error)
}

// Attribute is one specification attribute on a part.
type Attribute struct {
	AttributeName  string `json:"AttributeName"`
	AttributeValue string `json:"AttributeValue"`
}

// Part is the subset of the Mouser part record the pipeline uses.
type Part struct {
	ManufacturerPartNumber string      `json:"ManufacturerPartNumber"`
	Manufacturer           string      `json:"Manufacturer"`
	Description            string      `json:"Description"`
	ProductDetailURL       string      `json:"ProductDetailUrl"`
	DataSheetURL           string      `json:"DataSheetUrl"`
	LifecycleStatus        string      `json:"LifecycleStatus"`
	Availability           string      `json:"Availability"`
	MouserPartNumber       string      `json:"MouserPartNumber"`
	ProductAttributes      []Attribute `json:"ProductAttributes"`
}

type searchRequest struct {
	SearchByPartRequest partRequest `json:"SearchByPartRequest"`
}

type partRequest struct {
	MouserPartNumber  string `json:"mouserPartNumber"`
	PartSearchOptions string `json:"partSearchOptions,omitempty"`
}

type searchResponse struct {
	Errors []struct {
		Message string `json:"Message"`
	} `json:"Errors"`
	SearchResults struct {
		NumberOfResult int    `json:"NumberOfResult"`
		Parts          []Part `json:"Parts"`
	} `json:"SearchResults"`
}

// APIError is a non-2xx response from the Mouser API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mouser: status %d: %s", e.StatusCode, e.Body)
}

// Option configures the Mouser client.
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

// WithRateLimit sets a per-second rate limit for API calls.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Mouser Search API client. The API key is passed
// as a query parameter on every call, per the Mouser API contract.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api.mouser.com",
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

func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

func (c *httpClient) SearchByPartNumber(ctx context.Context, mpn string) ([]Part, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "mouser: rate limit")
		}
	}

	reqURL := fmt.Sprintf("%s/api/v1/search/partnumber?apiKey=%s", c.baseURL, url.QueryEscape(c.apiKey))

	payload, err := json.Marshal(searchRequest{
		SearchByPartRequest: partRequest{MouserPartNumber: mpn},
	})
	if err != nil {
		return nil, eris.Wrap(err, "mouser: marshal request")
	}

	const maxAttempts = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
		if err != nil {
			return nil, eris.Wrap(err, "mouser: create request")
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = eris.Wrap(err, "mouser: request failed")
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
			return nil, eris.Wrap(readErr, "mouser: read response body")
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

		var result searchResponse
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, eris.Wrap(err, "mouser: unmarshal response")
		}

		// Mouser reports request-level problems (including bad keys) in an
		// Errors array on a 200 response.
		if len(result.Errors) > 0 {
			msgs := make([]string, len(result.Errors))
			for i, e := range result.Errors {
				msgs[i] = e.Message
			}
			msg := strings.Join(msgs, "; ")
			if strings.Contains(strings.ToLower(msg), "apikey") || strings.Contains(strings.ToLower(msg), "api key") {
				return nil, &APIError{StatusCode: http.StatusUnauthorized, Body: msg}
			}
			return nil, eris.Errorf("mouser: api error: %s", msg)
		}

		return result.SearchResults.Parts, nil
	}

	return nil, lastErr
}
