package comparison

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcline/partscope/internal/model"
)

func TestCanonicalColumn(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Size / Dimension":         "Size / Dimension",
		"size (mm)":                "Size / Dimension",
		"Frame Dimensions":         "Size / Dimension",
		"Air Flow":                 "Air Flow",
		"Airflow (CFM)":            "Air Flow",
		"Static Pressure":          "Static Pressure",
		"Bearing":                  "Bearing Type",
		"Bearing Type":             "Bearing Type",
		"Fan Type":                 "Fan Type",
		"Noise":                    "Noise",
		"RPM":                      "RPM",
		"Speed (RPM)":              "RPM",
		"Termination":              "Termination",
		"Operating Temperature":    "Operating Temperature",
		"Voltage - Rated":          "Voltage - Rated",
		"Rated Voltage":            "Voltage - Rated",
		"Agency Approvals":         "Approval Agency",
		"Weight":                   "Weight",
	}
	for raw, want := range cases {
		assert.Equal(t, want, CanonicalColumn(raw), "raw label %q", raw)
	}
}

func TestCanonicalColumn_TitleCaseFallback(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Mounting Style", CanonicalColumn("mounting style"))
}

func TestCanonicalizeResult_FirstValueWins(t *testing.T) {
	t.Parallel()

	attrs := model.NewAttributes()
	attrs.Set("Voltage - Rated", "24VDC")
	attrs.Set("Rated Voltage", "12VDC") // folds into the same column
	attrs.Set("Blank Field", "")        // dropped

	out := CanonicalizeResult(model.LookupResult{MPN: "4414F", Attributes: attrs})

	require.Equal(t, []string{"Voltage - Rated"}, out.Attributes.Names())
	v, _ := out.Attributes.Get("Voltage - Rated")
	assert.Equal(t, "24VDC", v)
}

func TestCanonicalizeResult_EmptyPassthrough(t *testing.T) {
	t.Parallel()

	in := model.LookupResult{MPN: "X", FailureReason: model.ReasonNotFound}
	out := CanonicalizeResult(in)
	assert.Equal(t, in, out)
}
