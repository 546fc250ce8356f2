// Package ranking orders a part's specification parameters from most to
// least critical to preserve when hunting for a replacement.
package ranking

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/arcline/partscope/pkg/claude"
)

// Parameter is one rankable specification parameter. ID and ValueID are
// the catalog's parametric identifiers when known; Value is the display
// text that downstream filtering uses.
type Parameter struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Value   string `json:"value,omitempty"`
	ValueID string `json:"value_id,omitempty"`
}

const systemPrompt = `You are assisting in component replacement engineering.

GOAL:
Rank ALL of the provided specification parameters from MOST CRUCIAL to preserve (parameters that, if changed, would likely force a redesign or cause the part to not function as intended)
down to LEAST CRUCIAL (parameters that can usually be varied or dropped with minimal redesign risk).

CRITERIA:
- Treat electrical/electronic ratings fundamental to function (e.g., Voltage - Rated, Current, Power, Frequency, Package Size critical to PCB fit, Connector Pin Count, etc.) as the MOST crucial.
- Treat secondary/mechanical/optional features (e.g., packaging style, lead finish, minor tolerances, marking, weight, cosmetic features) as less crucial.
- You MUST return ALL parameters provided, even if they seem trivial. Do not omit any.

OUTPUT:
Return STRICT JSON with schema:

{
  "ranked": [
    {"id": "<ParameterId>", "name": "<ParameterName>"},
    ...
  ]
}

IMPORTANT:
- Include EVERY provided parameter exactly once.
- Order them from MOST CRUCIAL (top of list) -> LEAST CRUCIAL (bottom of list).
- Do not invent new parameters.`

// Ranker ranks parameters via the Anthropic API.
type Ranker struct {
	client      claude.Client
	model       string
	maxTokens   int64
	temperature float64
}

// New creates a Ranker.
func New(client claude.Client, model string, maxTokens int64) *Ranker {
	return &Ranker{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: 0.2,
	}
}

type promptPayload struct {
	MPN        string      `json:"mpn,omitempty"`
	Category   string      `json:"category,omitempty"`
	Parameters []Parameter `json:"parameters"`
}

type rankedPayload struct {
	Ranked []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"ranked"`
}

// Rank orders params most-to-least critical. Only ids and names drive
// the model's ordering; the original value texts are re-attached to the
// returned rows so downstream filtering works on values, not ids. Any
// id the model drops is re-appended, and on API failure the input order
// is returned unchanged.
func (r *Ranker) Rank(ctx context.Context, mpn, category string, params []Parameter) []Parameter {
	if len(params) == 0 {
		return nil
	}

	byID := make(map[string]Parameter, len(params))
	for _, p := range params {
		byID[p.ID] = p
	}

	blob, err := json.Marshal(promptPayload{MPN: mpn, Category: category, Parameters: params})
	if err != nil {
		return params
	}

	resp, err := r.client.CreateMessage(ctx, claude.MessageRequest{
		Model:       r.model,
		MaxTokens:   r.maxTokens,
		System:      systemPrompt,
		Prompt:      string(blob),
		Temperature: &r.temperature,
	})
	if err != nil {
		zap.L().Warn("ranking: model call failed, keeping input order", zap.Error(err))
		return params
	}

	var ranked rankedPayload
	if err := json.Unmarshal([]byte(extractJSON(resp.Text)), &ranked); err != nil {
		zap.L().Warn("ranking: unparseable model output, keeping input order", zap.Error(err))
		return params
	}

	out := make([]Parameter, 0, len(params))
	seen := make(map[string]bool, len(params))
	for _, row := range ranked.Ranked {
		orig, ok := byID[row.ID]
		if !ok || seen[row.ID] {
			continue
		}
		seen[row.ID] = true
		name := row.Name
		if name == "" {
			name = orig.Name
		}
		out = append(out, Parameter{
			ID:      row.ID,
			Name:    name,
			Value:   orig.Value,
			ValueID: orig.ValueID,
		})
	}

	// Completeness guarantee: every input parameter appears exactly once.
	for _, p := range params {
		if !seen[p.ID] {
			out = append(out, p)
		}
	}

	return out
}

// extractJSON strips markdown fences and any prose around the JSON
// object the model returns.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "{"); i >= 0 {
		if j := strings.LastIndex(s, "}"); j > i {
			return s[i : j+1]
		}
	}
	return s
}
