package replacement

import (
	"regexp"
	"sort"
	"strings"
)

var (
	nonAlnumRx    = regexp.MustCompile(`[^A-Za-z0-9]`)
	numericRunRx  = regexp.MustCompile(`\d{3,}`)
	leadingRunRx  = regexp.MustCompile(`^\d{3,}`)
	multiSpaceRx  = regexp.MustCompile(`\s{2,}`)
	// ASCII hyphen plus the usual Unicode dash suspects.
	dashRx = regexp.MustCompile("[‐‑‒–—―−-]+")
)

// NormalizeMPN reduces an MPN to upper-case alphanumerics for
// comparison across catalogs.
func NormalizeMPN(s string) string {
	return nonAlnumRx.ReplaceAllString(strings.ToUpper(s), "")
}

// BaseTokens extracts conservative base-family tokens from an MPN:
// every numeric run of three or more digits, plus the leading run when
// present. Longer tokens sort first for more selective matching.
func BaseTokens(mpn string) []string {
	s := NormalizeMPN(mpn)

	set := make(map[string]struct{})
	for _, t := range numericRunRx.FindAllString(s, -1) {
		set[t] = struct{}{}
	}
	if lead := leadingRunRx.FindString(s); lead != "" {
		set[lead] = struct{}{}
	}

	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

// containsBaseToken reports whether a normalized MPN carries any of the
// base-family tokens.
func containsBaseToken(normMPN string, tokens []string) bool {
	for _, t := range tokens {
		if t != "" && strings.Contains(normMPN, t) {
			return true
		}
	}
	return false
}

// MPNVariants produces lookup variants tolerant of hyphen and Unicode
// dash styling: the raw MPN, a dash-stripped form, a dash-to-space
// form, and the leading whitespace token.
func MPNVariants(raw string) []string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	variants := []string{s}
	add := func(v string) {
		for _, existing := range variants {
			if existing == v {
				return
			}
		}
		if v != "" {
			variants = append(variants, v)
		}
	}

	add(dashRx.ReplaceAllString(s, ""))

	spaced := strings.TrimSpace(multiSpaceRx.ReplaceAllString(dashRx.ReplaceAllString(s, " "), " "))
	add(spaced)

	if fields := strings.Fields(s); len(fields) > 0 {
		add(fields[0])
	}

	return variants
}
