// Package resolver orchestrates MPN attribute lookups across catalog
// sources: try the primary, fall back to the secondary on failure or an
// empty result, and report which source answered.
package resolver

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/arcline/partscope/internal/catalog"
	"github.com/arcline/partscope/internal/model"
)

// state is the explicit lookup progression. Keeping it as a value (not
// nested branching) makes the fallback order auditable in isolation.
type state int

const (
	stateNotStarted state = iota
	stateTryPrimary
	stateTrySecondary
	stateDone
)

// Resolver runs the primary-then-secondary lookup cascade. The source
// order is fixed at construction and never reversed.
type Resolver struct {
	primary   catalog.Source
	secondary catalog.Source
}

// New creates a Resolver. Either source may be unconfigured; the
// cascade skips it.
func New(primary, secondary catalog.Source) *Resolver {
	return &Resolver{primary: primary, secondary: secondary}
}

// Lookup resolves one MPN. Failures are values, never errors: an
// exhausted cascade yields an empty result carrying the last failure
// reason, or no_provider_configured when nothing could be attempted.
func (r *Resolver) Lookup(ctx context.Context, mpn string) model.LookupResult {
	result := model.LookupResult{
		MPN:        mpn,
		Attributes: model.NewAttributes(),
	}

	var lastReason model.FailureReason
	attempted := false

	for st := stateNotStarted; st != stateDone; {
		switch st {
		case stateNotStarted:
			st = stateTryPrimary

		case stateTryPrimary:
			if !r.primary.Configured() {
				st = stateTrySecondary
				continue
			}
			attempted = true
			if part, reason := r.attempt(ctx, r.primary, mpn); part != nil {
				result.Provider = r.primary.Name()
				result.Attributes = part.Attributes
				result.ProductURL = part.ProductURL
				st = stateDone
			} else {
				lastReason = reason
				st = stateTrySecondary
			}

		case stateTrySecondary:
			if !r.secondary.Configured() {
				st = stateDone
				continue
			}
			attempted = true
			if part, reason := r.attempt(ctx, r.secondary, mpn); part != nil {
				result.Provider = r.secondary.Name()
				result.Attributes = part.Attributes
				result.ProductURL = part.ProductURL
			} else {
				lastReason = reason
			}
			st = stateDone
		}
	}

	if !result.Resolved() && result.Provider == "" {
		if !attempted {
			result.FailureReason = model.ReasonNoProviderConfigured
		} else {
			result.FailureReason = lastReason
		}
	}

	return result
}

// attempt runs one source. A non-nil part means the cascade is done: it
// carries a non-empty attribute set. Empty results and classified
// failures both return nil with the reason to carry forward.
func (r *Resolver) attempt(ctx context.Context, src catalog.Source, mpn string) (*catalog.Part, model.FailureReason) {
	part, err := src.Fetch(ctx, mpn)
	if err != nil {
		reason := model.ReasonNetworkError
		var cerr *catalog.Error
		if errors.As(err, &cerr) {
			reason = cerr.Reason
		}
		zap.L().Warn("resolver: source failed",
			zap.String("source", src.Name()),
			zap.String("mpn", mpn),
			zap.String("reason", string(reason)),
			zap.Error(err),
		)
		return nil, reason
	}

	if part.Attributes.Empty() {
		zap.L().Debug("resolver: source returned no attributes",
			zap.String("source", src.Name()),
			zap.String("mpn", mpn),
		)
		return nil, model.ReasonNotFound
	}

	return part, model.ReasonNone
}

// LookupPair resolves two MPNs concurrently. The lookups are
// independent: no state is shared between them beyond the read-only
// credential configuration, so each side's token handling is isolated.
func (r *Resolver) LookupPair(ctx context.Context, left, right string) (model.LookupResult, model.LookupResult) {
	var lr, rr model.LookupResult

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lr = r.Lookup(gCtx, left)
		return nil
	})
	g.Go(func() error {
		rr = r.Lookup(gCtx, right)
		return nil
	})
	_ = g.Wait()

	return lr, rr
}
