package comparison

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/arcline/partscope/internal/model"
)

var titleCaser = cases.Title(language.AmericanEnglish)

// CanonicalColumn folds provider-specific attribute labels into the
// display buckets the comparison page uses. Unrecognized labels fall
// back to a title-cased copy of the raw name. This is presentation-only:
// the core merger always works on verbatim provider names.
func CanonicalColumn(raw string) string {
	k := strings.ToLower(strings.TrimSpace(raw))

	has := func(frags ...string) bool {
		for _, f := range frags {
			if !strings.Contains(k, f) {
				return false
			}
		}
		return true
	}

	switch {
	case has("size") || has("dimension"):
		return "Size / Dimension"
	case has("width"):
		return "Width"
	case has("height") || strings.Contains(k, "119mm h"):
		return "Height"
	case has("air") && (has("flow") || strings.Contains(k, "cfm")):
		return "Air Flow"
	case has("static", "pressure"):
		return "Static Pressure"
	case has("bearing"):
		return "Bearing Type"
	case has("fan", "type"):
		return "Fan Type"
	case has("feature"):
		return "Features"
	case has("noise") || strings.Contains(k, "db"):
		return "Noise"
	case (has("power") && strings.Contains(k, "w")) || strings.Contains(k, "watts"):
		return "Power (Watts)"
	case strings.Contains(k, "rpm"):
		return "RPM"
	case has("termination") || has("lead"):
		return "Termination"
	case has("ingress") || has("ip "):
		return "Ingress Protection"
	case (has("operating") && has("temp")) || strings.Contains(k, "temperature"):
		return "Operating Temperature"
	case has("voltage", "rated"):
		return "Voltage - Rated"
	case has("approval") || k == "agency approvals":
		return "Approval Agency"
	case has("weight"):
		return "Weight"
	case has("depth") || has("length"):
		return "Depth"
	}

	return titleCaser.String(k)
}

// CanonicalizeResult rewrites a lookup result's attribute names into
// canonical display columns. The first value seen for a column wins.
func CanonicalizeResult(r model.LookupResult) model.LookupResult {
	if r.Attributes == nil || r.Attributes.Empty() {
		return r
	}

	attrs := model.NewAttributes()
	for _, name := range r.Attributes.Names() {
		v, _ := r.Attributes.Get(name)
		if strings.TrimSpace(v) == "" {
			continue
		}
		attrs.Set(CanonicalColumn(name), v)
	}

	out := r
	out.Attributes = attrs
	return out
}
