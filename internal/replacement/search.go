// Package replacement finds substitute parts for an MPN by iterative
// parametric search: anchor keywords from the part's category, filter
// on its ranked parameter values, and drop the least-critical value
// between rounds until the catalog yields candidates.
package replacement

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/arcline/partscope/internal/catalog"
	"github.com/arcline/partscope/internal/model"
	"github.com/arcline/partscope/internal/ranking"
	"github.com/arcline/partscope/pkg/digikey"
)

// BaseMode controls base-family filtering of candidates.
type BaseMode string

const (
	// BaseModeNone keeps all candidates.
	BaseModeNone BaseMode = ""
	// BaseModeExclude drops candidates sharing a base token with the
	// original MPN (same-family variants are not real replacements).
	BaseModeExclude BaseMode = "exclude_base"
	// BaseModeOnly keeps only candidates within the original's family.
	BaseModeOnly BaseMode = "only_base"
)

// Round records one search attempt.
type Round struct {
	Attempt    int                 `json:"attempt"`
	UsedValues []ranking.Parameter `json:"used_values"`
	Dropped    int                 `json:"dropped_value_count"`
	Results    int                 `json:"results"`
}

// Candidate is one replacement part, enriched with its own attributes
// when the lookup pipeline can resolve it.
type Candidate struct {
	MPN          string            `json:"mpn"`
	Manufacturer string            `json:"manufacturer"`
	Description  string            `json:"description"`
	Lifecycle    string            `json:"lifecycle,omitempty"`
	ProductURL   string            `json:"product_url,omitempty"`
	MatchReasons []string          `json:"match_reasons,omitempty"`
	Attributes   *model.Attributes `json:"attributes,omitempty"`
}

// Result is the outcome of a replacement search.
type Result struct {
	MPN        string              `json:"mpn"`
	Rounds     []Round             `json:"rounds"`
	Used       []ranking.Parameter `json:"used_parameters"`
	Dropped    []ranking.Parameter `json:"dropped_parameters"`
	Candidates []Candidate         `json:"candidates"`
	BaseMode   BaseMode            `json:"base_mode,omitempty"`
	BaseTokens []string            `json:"base_tokens,omitempty"`
	Note       string              `json:"note,omitempty"`
}

// LookupFunc resolves one MPN to attributes; used to enrich candidates.
type LookupFunc func(ctx context.Context, mpn string) model.LookupResult

// ParamRanker orders parameters most-to-least critical.
type ParamRanker interface {
	Rank(ctx context.Context, mpn, category string, params []ranking.Parameter) []ranking.Parameter
}

// Options tunes the search.
type Options struct {
	RecordCount   int
	MaxRounds     int
	BaseMode      BaseMode
	EnrichWorkers int
	MaxCandidates int
}

func (o *Options) fill() {
	if o.RecordCount <= 0 {
		o.RecordCount = 50
	}
	if o.MaxRounds <= 0 {
		o.MaxRounds = 12
	}
	if o.EnrichWorkers <= 0 {
		o.EnrichWorkers = 8
	}
	if o.MaxCandidates <= 0 {
		o.MaxCandidates = 10
	}
}

// Searcher runs replacement searches against the Digi-Key catalog.
type Searcher struct {
	client digikey.Client
	ranker ParamRanker
	lookup LookupFunc
}

// NewSearcher creates a Searcher. ranker may be nil, in which case
// parameters keep catalog order; lookup may be nil to skip enrichment.
func NewSearcher(client digikey.Client, ranker ParamRanker, lookup LookupFunc) *Searcher {
	return &Searcher{client: client, ranker: ranker, lookup: lookup}
}

// Search finds replacement candidates for an MPN.
func (s *Searcher) Search(ctx context.Context, mpn string, opts Options) (*Result, error) {
	opts.fill()

	mpn = strings.TrimSpace(mpn)
	result := &Result{
		MPN:        mpn,
		BaseMode:   opts.BaseMode,
		BaseTokens: BaseTokens(mpn),
	}

	product, err := s.client.ProductDetails(ctx, mpn)
	if err != nil {
		return nil, err
	}

	params := triplesFromProduct(product)
	if len(params) == 0 {
		result.Note = "no usable parameter values available for filtering"
		return result, nil
	}

	category := product.Category.Name
	if s.ranker != nil {
		params = s.ranker.Rank(ctx, mpn, category, params)
	}

	baseKeywords := pickBaseKeywords(category, product.Description.ProductDescription)
	normOriginal := NormalizeMPN(mpn)

	used := append([]ranking.Parameter(nil), params...)
	var dropped []ranking.Parameter
	var candidates []Candidate

	for attempt := 1; attempt <= opts.MaxRounds; attempt++ {
		products, err := s.searchWithFilters(ctx, baseKeywords, used, opts.RecordCount)
		if err != nil {
			zap.L().Warn("replacement: filtered search failed",
				zap.String("mpn", mpn),
				zap.Error(err),
			)
		}
		if len(products) == 0 {
			products = s.keywordFallback(ctx, baseKeywords, used, opts.RecordCount)
		}

		candidates = toCandidates(products, normOriginal, result.BaseTokens, opts.BaseMode)

		result.Rounds = append(result.Rounds, Round{
			Attempt:    attempt,
			UsedValues: append([]ranking.Parameter(nil), used...),
			Dropped:    len(dropped),
			Results:    len(candidates),
		})

		if len(candidates) > 0 || len(used) == 0 {
			break
		}

		// Drop the least-critical remaining value and retry.
		last := used[len(used)-1]
		zap.L().Debug("replacement: dropping lowest-ranked value",
			zap.String("name", last.Name),
			zap.String("value", last.Value),
		)
		dropped = append(dropped, last)
		used = used[:len(used)-1]
	}

	if len(candidates) > opts.MaxCandidates {
		candidates = candidates[:opts.MaxCandidates]
	}

	reasons := matchReasons(used)
	for i := range candidates {
		candidates[i].MatchReasons = reasons
	}

	if s.lookup != nil {
		s.enrich(ctx, candidates, opts.EnrichWorkers)
	}

	result.Used = used
	result.Dropped = dropped
	result.Candidates = candidates

	return result, nil
}

// searchWithFilters tries filter payload shapes from strongest to
// weakest: id+valueId, id+valueText, id+value, then text+text. The
// anchor keywords always ride along so the part class stays fixed.
func (s *Searcher) searchWithFilters(ctx context.Context, baseKeywords string, params []ranking.Parameter, recordCount int) ([]digikey.Product, error) {
	var idValID, idValTxt, idVal, txtVal []digikey.ParameterFilter
	for _, p := range params {
		if p.ID != "" && p.ValueID != "" {
			idValID = append(idValID, digikey.ParameterFilter{ParameterID: p.ID, ValueID: p.ValueID})
		}
		if p.ID != "" && p.Value != "" {
			idValTxt = append(idValTxt, digikey.ParameterFilter{ParameterID: p.ID, ValueText: p.Value})
			idVal = append(idVal, digikey.ParameterFilter{ParameterID: p.ID, Value: p.Value})
		}
		if p.Name != "" && p.Value != "" {
			txtVal = append(txtVal, digikey.ParameterFilter{ParameterText: p.Name, ValueText: p.Value})
		}
	}

	var requests []digikey.KeywordRequest
	if len(idValID) > 0 {
		requests = append(requests, digikey.KeywordRequest{
			Keywords: baseKeywords, RecordCount: recordCount,
			Filters: &digikey.Filters{ParameterFilters: idValID},
		})
	}
	if len(idValTxt) > 0 {
		requests = append(requests, digikey.KeywordRequest{
			Keywords: baseKeywords, RecordCount: recordCount,
			Filters: &digikey.Filters{ParameterFilters: idValTxt},
		})
	}
	if len(idVal) > 0 {
		requests = append(requests, digikey.KeywordRequest{
			Keywords: baseKeywords, RecordCount: recordCount,
			ParameterValueFilters: idVal,
		})
	}
	if len(txtVal) > 0 {
		requests = append(requests, digikey.KeywordRequest{
			Keywords: baseKeywords, RecordCount: recordCount,
			Filters: &digikey.Filters{ParameterFilters: txtVal},
		})
	}

	var lastErr error
	for _, req := range requests {
		products, err := s.client.KeywordSearch(ctx, req)
		if err != nil {
			lastErr = err
			continue
		}
		if len(products) > 0 {
			return products, nil
		}
	}
	return nil, lastErr
}

// keywordFallback runs plain keyword searches when parametric filtering
// comes up empty: anchor alone, anchor plus the top values, then each
// top value on its own.
func (s *Searcher) keywordFallback(ctx context.Context, baseKeywords string, params []ranking.Parameter, recordCount int) []digikey.Product {
	var attempts []string
	if baseKeywords != "" {
		attempts = append(attempts, baseKeywords)
	}
	attempts = append(attempts, keywordsFromValues(baseKeywords, params, 3))
	for i := 0; i < len(params) && i < 3; i++ {
		attempts = append(attempts, keywordsFromValues(baseKeywords, params[i:i+1], 1))
	}

	seen := make(map[string]bool)
	for _, kw := range attempts {
		kw = strings.TrimSpace(kw)
		if kw == "" || seen[strings.ToLower(kw)] {
			continue
		}
		seen[strings.ToLower(kw)] = true

		products, err := s.client.KeywordSearch(ctx, digikey.KeywordRequest{
			Keywords:    kw,
			RecordCount: recordCount,
		})
		if err != nil {
			zap.L().Debug("replacement: keyword fallback failed",
				zap.String("keywords", kw),
				zap.Error(err),
			)
			continue
		}
		if len(products) > 0 {
			return products
		}
	}
	return nil
}

// enrich resolves each candidate's own attributes in parallel, trying
// dash-tolerant MPN variants until one answers. Best effort: a failed
// candidate keeps its bare search record.
func (s *Searcher) enrich(ctx context.Context, candidates []Candidate, workers int) {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range candidates {
		g.Go(func() error {
			c := &candidates[i]
			for _, variant := range MPNVariants(c.MPN) {
				res := s.lookup(gCtx, variant)
				if res.Resolved() {
					c.Attributes = res.Attributes
					if c.ProductURL == "" {
						c.ProductURL = res.ProductURL
					}
					return nil
				}
			}
			return nil
		})
	}
	_ = g.Wait()
}

// triplesFromProduct converts catalog parameters into rankable rows,
// skipping placeholders the same way the attribute adapters do.
func triplesFromProduct(p *digikey.Product) []ranking.Parameter {
	var out []ranking.Parameter
	for _, param := range p.Parameters {
		name := strings.TrimSpace(param.ParameterText)
		value := strings.TrimSpace(param.ValueText)
		if catalog.IsPlaceholder(value) {
			value = name
		}
		if name == "" || catalog.IsPlaceholder(value) {
			continue
		}
		row := ranking.Parameter{Name: name, Value: value, ValueID: param.ValueID}
		if param.ParameterID != 0 {
			row.ID = strconv.Itoa(param.ParameterID)
		}
		out = append(out, row)
	}
	return out
}

// pickBaseKeywords chooses the anchor keyword string, preferring the
// catalog category and biasing fan-like parts toward the canonical
// Digi-Key fan categories.
func pickBaseKeywords(category, description string) string {
	s := strings.TrimSpace(category)
	if s == "" {
		desc := strings.ToLower(description)
		if strings.Contains(desc, "fan") {
			if strings.Contains(desc, "dc") {
				return "DC Fans"
			}
			return "Fans"
		}
		return ""
	}
	low := strings.ToLower(s)
	if strings.Contains(low, "fan") {
		if strings.Contains(low, "dc") {
			return "DC Fans"
		}
		return "Fans"
	}
	return s
}

// keywordsFromValues builds a keyword string like
// "DC Fans 24VDC Tubeaxial 119mm" from the top-ranked values.
func keywordsFromValues(base string, params []ranking.Parameter, maxTokens int) string {
	var tokens []string
	for _, p := range params {
		t := strings.Join(strings.Fields(p.Value), " ")
		if t == "" {
			continue
		}
		tokens = append(tokens, t)
		if len(tokens) >= maxTokens {
			break
		}
	}
	if base != "" {
		tokens = append([]string{base}, tokens...)
	}
	return strings.Join(tokens, " ")
}

// toCandidates filters raw search hits: the original part itself is
// always removed, then base-family filtering is applied.
func toCandidates(products []digikey.Product, normOriginal string, baseTokens []string, mode BaseMode) []Candidate {
	var out []Candidate
	for _, p := range products {
		norm := NormalizeMPN(p.ManufacturerProductNumber)
		if norm == normOriginal {
			continue
		}
		switch mode {
		case BaseModeExclude:
			if containsBaseToken(norm, baseTokens) {
				continue
			}
		case BaseModeOnly:
			if !containsBaseToken(norm, baseTokens) {
				continue
			}
		}
		out = append(out, Candidate{
			MPN:          p.ManufacturerProductNumber,
			Manufacturer: p.Manufacturer.Name,
			Description:  p.Description.ProductDescription,
			Lifecycle:    p.ProductStatus.Status,
			ProductURL:   p.ProductURL,
		})
	}
	return out
}

// matchReasons summarizes the surviving filter values for display.
func matchReasons(used []ranking.Parameter) []string {
	var out []string
	for i, p := range used {
		if i >= 6 {
			break
		}
		out = append(out, p.Name+" = "+p.Value)
	}
	return out
}
