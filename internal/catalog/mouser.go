package catalog

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/arcline/partscope/internal/config"
	"github.com/arcline/partscope/internal/model"
	"github.com/arcline/partscope/pkg/mouser"
)

// MouserSource adapts the Mouser Search API to the Source contract. It
// is only consulted when the primary source fails or comes back empty.
type MouserSource struct {
	client     mouser.Client
	configured bool
}

// NewMouserSource builds the adapter from credentials.
func NewMouserSource(cfg config.MouserConfig) *MouserSource {
	if !cfg.Configured() {
		return &MouserSource{}
	}

	var opts []mouser.Option
	if cfg.BaseURL != "" {
		opts = append(opts, mouser.WithBaseURL(cfg.BaseURL))
	}

	return &MouserSource{
		client:     mouser.NewClient(cfg.APIKey, opts...),
		configured: true,
	}
}

// NewMouserSourceWithClient wraps an existing client.
func NewMouserSourceWithClient(client mouser.Client) *MouserSource {
	return &MouserSource{client: client, configured: client != nil}
}

func (s *MouserSource) Name() string { return "mouser" }

func (s *MouserSource) Configured() bool { return s.configured }

func (s *MouserSource) Fetch(ctx context.Context, mpn string) (*Part, error) {
	parts, err := s.client.SearchByPartNumber(ctx, mpn)
	if err != nil {
		return nil, s.classify(err)
	}

	part := pickPart(parts, mpn)
	if part == nil {
		// HTTP-level success with no hits: empty attributes, not an error.
		return &Part{Attributes: model.NewAttributes()}, nil
	}

	attrs := model.NewAttributes()
	for _, a := range part.ProductAttributes {
		if a.AttributeName == "" || IsPlaceholder(a.AttributeValue) {
			continue
		}
		attrs.Set(a.AttributeName, a.AttributeValue)
	}

	zap.L().Debug("catalog: mouser fetch",
		zap.String("mpn", mpn),
		zap.Int("attributes", attrs.Len()),
	)

	return &Part{
		Attributes: attrs,
		ProductURL: part.ProductDetailURL,
	}, nil
}

// pickPart prefers an exact (case-insensitive) MPN match over the first
// search hit, since Mouser part-number search is a prefix match.
func pickPart(parts []mouser.Part, mpn string) *mouser.Part {
	if len(parts) == 0 {
		return nil
	}
	for i := range parts {
		if strings.EqualFold(parts[i].ManufacturerPartNumber, mpn) {
			return &parts[i]
		}
	}
	return &parts[0]
}

func (s *MouserSource) classify(err error) *Error {
	var apiErr *mouser.APIError
	if errors.As(err, &apiErr) {
		return &Error{Provider: s.Name(), Reason: reasonForStatus(apiErr.StatusCode), Err: err}
	}
	return &Error{Provider: s.Name(), Reason: reasonForTransport(err), Err: err}
}
