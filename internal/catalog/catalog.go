// Package catalog adapts external parts-catalog services to a uniform
// attribute-lookup contract. Failures are classified at this boundary
// into the fixed reason taxonomy; they never escape as uncaught faults.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/arcline/partscope/internal/model"
)

// Source is a single catalog service capable of answering an MPN lookup.
type Source interface {
	// Name returns the provider identifier used for provenance.
	Name() string
	// Configured reports whether usable credentials are present. The
	// answer is fixed at construction and never changes mid-process.
	Configured() bool
	// Fetch looks up one MPN. A part with zero attributes is a valid
	// success (HTTP-level hit with no parametric data); errors are
	// always *Error values.
	Fetch(ctx context.Context, mpn string) (*Part, error)
}

// Part is a normalized catalog hit: provider-native attribute names
// mapped verbatim to display values, plus the detail page URL.
type Part struct {
	Attributes *model.Attributes
	ProductURL string
}

// Error is a classified provider failure.
type Error struct {
	Provider string
	Reason   model.FailureReason
	Err      error
}

func (e *Error) Error() string {
	return e.Provider + ": " + string(e.Reason) + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// reasonForStatus maps an HTTP status to a failure reason. Retries on
// transient statuses happen inside the clients; by the time a status
// reaches here it is final.
func reasonForStatus(code int) model.FailureReason {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return model.ReasonAuthError
	case code == http.StatusNotFound:
		return model.ReasonNotFound
	case code == http.StatusTooManyRequests:
		return model.ReasonRateLimited
	default:
		return model.ReasonNetworkError
	}
}

// reasonForTransport classifies non-status errors: decode failures are
// malformed responses, everything else is a network problem.
func reasonForTransport(err error) model.FailureReason {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return model.ReasonMalformedResponse
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return model.ReasonNetworkError
	}
	if strings.Contains(err.Error(), "unmarshal") {
		return model.ReasonMalformedResponse
	}
	return model.ReasonNetworkError
}

// placeholders are value strings the catalogs use for "no data".
var placeholders = map[string]struct{}{
	"":     {},
	"-":    {},
	"—":    {},
	"n/a":  {},
	"na":   {},
	"none": {},
	"null": {},
}

// IsPlaceholder reports whether a raw attribute value carries no
// information and should be dropped during normalization.
func IsPlaceholder(v string) bool {
	_, ok := placeholders[strings.ToLower(strings.TrimSpace(v))]
	return ok
}
