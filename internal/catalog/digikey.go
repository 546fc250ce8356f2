package catalog

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/arcline/partscope/internal/config"
	"github.com/arcline/partscope/internal/model"
	"github.com/arcline/partscope/pkg/digikey"
)

// DigiKeySource adapts the Digi-Key Product Search API to the Source
// contract. It is the first-priority catalog service.
type DigiKeySource struct {
	client     digikey.Client
	configured bool
}

// NewDigiKeySource builds the adapter from credentials. The auth
// strategy is fixed here: a pre-issued token is used directly, a
// client id/secret pair goes through the OAuth exchange per call.
func NewDigiKeySource(cfg config.DigiKeyConfig) *DigiKeySource {
	if !cfg.Configured() {
		return &DigiKeySource{}
	}

	var tokens digikey.TokenSource
	if cfg.AccessToken != "" {
		tokens = digikey.StaticTokenSource{AccessToken: cfg.AccessToken}
	} else {
		tokens = digikey.NewClientCredentialsTokenSource(cfg.ClientID, cfg.ClientSecret, cfg.BaseURL+"/v1/oauth2/token", nil)
	}

	opts := []digikey.Option{digikey.WithLocale(cfg.LocaleSite, cfg.LocaleLang)}
	if cfg.BaseURL != "" {
		opts = append(opts, digikey.WithBaseURL(cfg.BaseURL))
	}

	return &DigiKeySource{
		client:     digikey.NewClient(cfg.ClientID, tokens, opts...),
		configured: true,
	}
}

// NewDigiKeySourceWithClient wraps an existing client. Used by tests
// and by callers that share one client across components.
func NewDigiKeySourceWithClient(client digikey.Client) *DigiKeySource {
	return &DigiKeySource{client: client, configured: client != nil}
}

func (s *DigiKeySource) Name() string { return "digikey" }

func (s *DigiKeySource) Configured() bool { return s.configured }

func (s *DigiKeySource) Fetch(ctx context.Context, mpn string) (*Part, error) {
	product, err := s.client.ProductDetails(ctx, mpn)
	if err != nil {
		return nil, s.classify(err)
	}

	attrs := model.NewAttributes()
	for _, p := range product.Parameters {
		name := p.ParameterText
		value := p.ValueText
		if name == "" {
			continue
		}
		// Boolean/enum style rows sometimes carry the information in the
		// name alone.
		if IsPlaceholder(value) {
			value = name
		}
		attrs.Set(name, value)
	}

	zap.L().Debug("catalog: digikey fetch",
		zap.String("mpn", mpn),
		zap.Int("attributes", attrs.Len()),
	)

	return &Part{
		Attributes: attrs,
		ProductURL: product.ProductURL,
	}, nil
}

// classify maps client-level errors into the failure taxonomy.
func (s *DigiKeySource) classify(err error) *Error {
	var authErr *digikey.AuthError
	if errors.As(err, &authErr) {
		return &Error{Provider: s.Name(), Reason: model.ReasonAuthError, Err: err}
	}

	var apiErr *digikey.APIError
	if errors.As(err, &apiErr) {
		return &Error{Provider: s.Name(), Reason: reasonForStatus(apiErr.StatusCode), Err: err}
	}

	return &Error{Provider: s.Name(), Reason: reasonForTransport(err), Err: err}
}
