package model

// FailureReason classifies why a provider lookup produced no attributes.
type FailureReason string

const (
	ReasonNone                 FailureReason = ""
	ReasonAuthError            FailureReason = "auth_error"
	ReasonNotFound             FailureReason = "not_found"
	ReasonRateLimited          FailureReason = "rate_limited"
	ReasonNetworkError         FailureReason = "network_error"
	ReasonMalformedResponse    FailureReason = "malformed_response"
	ReasonNoProviderConfigured FailureReason = "no_provider_configured"
)

// LookupResult is the outcome of resolving one MPN against the catalog
// sources. Provenance is always a single source; attributes from
// different providers are never merged. Immutable once constructed.
type LookupResult struct {
	MPN           string        `json:"mpn"`
	Provider      string        `json:"provider,omitempty"`
	Attributes    *Attributes   `json:"attributes"`
	FailureReason FailureReason `json:"failure_reason,omitempty"`
	ProductURL    string        `json:"product_url,omitempty"`
}

// Resolved reports whether the lookup produced a non-empty attribute set.
func (r LookupResult) Resolved() bool {
	return r.Attributes != nil && !r.Attributes.Empty()
}

// ComparisonRow is one attribute line in a two-part comparison. A side
// that does not carry the attribute is marked absent, which is distinct
// from carrying an empty string.
type ComparisonRow struct {
	Name         string `json:"name"`
	Left         string `json:"value_left"`
	Right        string `json:"value_right"`
	LeftPresent  bool   `json:"left_present"`
	RightPresent bool   `json:"right_present"`
	Match        bool   `json:"match"`
}
