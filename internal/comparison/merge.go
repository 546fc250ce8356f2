// Package comparison merges two resolved attribute sets into a
// side-by-side row sequence for rendering.
package comparison

import (
	"strings"

	"github.com/arcline/partscope/internal/model"
)

// AbsentValue marks an attribute missing on one side. It is distinct
// from an empty-string value, which counts as present.
const AbsentValue = "—"

// Merge builds the comparison rows for two lookup results. Pure: same
// inputs always yield the same sequence. Row order is the union of
// attribute names, left-side first-seen order, then names only the
// right side has, in its order. A name present on a single side is
// never a match; values on both sides match case-insensitively.
func Merge(left, right model.LookupResult) []model.ComparisonRow {
	var rows []model.ComparisonRow
	seen := make(map[string]int)

	appendName := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = len(rows)
		rows = append(rows, model.ComparisonRow{Name: name, Left: AbsentValue, Right: AbsentValue})
	}

	if left.Attributes != nil {
		for _, name := range left.Attributes.Names() {
			appendName(name)
		}
	}
	if right.Attributes != nil {
		for _, name := range right.Attributes.Names() {
			appendName(name)
		}
	}

	for i := range rows {
		row := &rows[i]
		if left.Attributes != nil {
			if v, ok := left.Attributes.Get(row.Name); ok {
				row.Left = v
				row.LeftPresent = true
			}
		}
		if right.Attributes != nil {
			if v, ok := right.Attributes.Get(row.Name); ok {
				row.Right = v
				row.RightPresent = true
			}
		}
		row.Match = row.LeftPresent && row.RightPresent &&
			normalizeValue(row.Left) == normalizeValue(row.Right)
	}

	return rows
}

// normalizeValue lowers case and collapses runs of whitespace so
// cosmetic differences do not break a match.
func normalizeValue(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
