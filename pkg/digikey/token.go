package digikey

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

// ccTokenSource implements the OAuth2 client-credentials exchange. The
// token is cached and refreshed shortly before expiry; concurrent
// callers share one exchange.
type ccTokenSource struct {
	clientID     string
	clientSecret string
	tokenURL     string
	http         *http.Client

	mu      sync.Mutex
	token   string
	expires time.Time
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// expirySlack refreshes the cached token this long before it expires so
// in-flight catalog calls never carry a token about to lapse.
const expirySlack = 60 * time.Second

func (s *ccTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && time.Now().Before(s.expires) {
		return s.token, nil
	}

	form := url.Values{
		"client_id":     {s.clientID},
		"client_secret": {s.clientSecret},
		"grant_type":    {"client_credentials"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", &AuthError{Err: eris.Wrap(err, "create token request")}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.http.Do(req)
	if err != nil {
		return "", &AuthError{Err: eris.Wrap(err, "token request failed")}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &AuthError{Err: eris.Wrap(err, "read token response")}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &AuthError{Err: eris.Errorf("status %d: %s", resp.StatusCode, string(body))}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", &AuthError{Err: eris.Wrap(err, "unmarshal token response")}
	}
	if tr.AccessToken == "" {
		return "", &AuthError{Err: eris.New("empty access token in response")}
	}

	s.token = tr.AccessToken
	s.expires = time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - expirySlack)

	return s.token, nil
}
