package comparison

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcline/partscope/internal/model"
)

func resultWith(mpn, provider string, pairs ...string) model.LookupResult {
	attrs := model.NewAttributes()
	for i := 0; i+1 < len(pairs); i += 2 {
		attrs.Set(pairs[i], pairs[i+1])
	}
	return model.LookupResult{MPN: mpn, Provider: provider, Attributes: attrs}
}

func TestMerge_UnionPreservesOrder(t *testing.T) {
	t.Parallel()

	left := resultWith("A", "digikey", "Voltage", "24VDC", "Air Flow", "100 CFM")
	right := resultWith("B", "mouser", "Air Flow", "90 CFM", "Noise", "42 dB", "Voltage", "24VDC")

	rows := Merge(left, right)

	var names []string
	for _, r := range rows {
		names = append(names, r.Name)
	}
	// Left-side order first, then right-only names in right order.
	assert.Equal(t, []string{"Voltage", "Air Flow", "Noise"}, names)
}

func TestMerge_NoNameLostOrDuplicated(t *testing.T) {
	t.Parallel()

	left := resultWith("A", "digikey", "P1", "x", "P2", "y", "P3", "z")
	right := resultWith("B", "mouser", "P3", "z", "P4", "w")

	rows := Merge(left, right)

	seen := make(map[string]int)
	for _, r := range rows {
		seen[r.Name]++
	}
	assert.Len(t, seen, 4)
	for name, count := range seen {
		assert.Equal(t, 1, count, "name %q duplicated", name)
	}
}

func TestMerge_CaseInsensitiveMatch(t *testing.T) {
	t.Parallel()

	left := resultWith("A", "digikey", "Package", "SOIC-8")
	right := resultWith("B", "mouser", "Package", "soic-8")

	rows := Merge(left, right)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Match)
}

func TestMerge_WhitespaceCollapsedMatch(t *testing.T) {
	t.Parallel()

	left := resultWith("A", "digikey", "Termination", "2 Wire  Leads")
	right := resultWith("B", "mouser", "Termination", "2 Wire Leads")

	rows := Merge(left, right)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Match)
}

func TestMerge_AbsentSideNeverMatches(t *testing.T) {
	t.Parallel()

	left := resultWith("A", "digikey", "Tolerance", "5%")
	right := resultWith("B", "mouser")

	rows := Merge(left, right)
	require.Len(t, rows, 1)
	assert.Equal(t, "5%", rows[0].Left)
	assert.True(t, rows[0].LeftPresent)
	assert.Equal(t, AbsentValue, rows[0].Right)
	assert.False(t, rows[0].RightPresent)
	assert.False(t, rows[0].Match)
}

func TestMerge_EmptyStringIsPresent(t *testing.T) {
	t.Parallel()

	left := resultWith("A", "digikey", "Features", "")
	right := resultWith("B", "mouser", "Features", "")

	rows := Merge(left, right)
	require.Len(t, rows, 1)
	// An empty value is present data, distinct from the absent marker.
	assert.True(t, rows[0].LeftPresent)
	assert.True(t, rows[0].RightPresent)
	assert.True(t, rows[0].Match)
}

func TestMerge_NilAttributes(t *testing.T) {
	t.Parallel()

	left := model.LookupResult{MPN: "A"}
	right := resultWith("B", "mouser", "RPM", "3100")

	rows := Merge(left, right)
	require.Len(t, rows, 1)
	assert.Equal(t, AbsentValue, rows[0].Left)
	assert.Equal(t, "3100", rows[0].Right)
}

func TestMerge_Deterministic(t *testing.T) {
	t.Parallel()

	left := resultWith("A", "digikey", "P1", "x", "P2", "y")
	right := resultWith("B", "mouser", "P2", "Y", "P3", "z")

	first := Merge(left, right)
	second := Merge(left, right)
	assert.Equal(t, first, second)
}

// Mirrors the canonical fallback scenario: primary answers one side,
// the secondary answers the other with overlapping attributes.
func TestMerge_FallbackScenario(t *testing.T) {
	t.Parallel()

	left := resultWith("ABC123", "digikey",
		"Package", "SOIC-8",
		"Voltage", "5V",
	)
	right := resultWith("XYZ789", "mouser",
		"Package", "soic-8",
		"Voltage", "3.3V",
		"Tolerance", "5%",
	)

	rows := Merge(left, right)
	require.Len(t, rows, 3)

	assert.Equal(t, "Package", rows[0].Name)
	assert.True(t, rows[0].Match)

	assert.Equal(t, "Voltage", rows[1].Name)
	assert.False(t, rows[1].Match)

	assert.Equal(t, "Tolerance", rows[2].Name)
	assert.Equal(t, AbsentValue, rows[2].Left)
	assert.Equal(t, "5%", rows[2].Right)
	assert.False(t, rows[2].Match)
}
