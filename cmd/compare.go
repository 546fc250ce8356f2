package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arcline/partscope/internal/comparison"
	"github.com/arcline/partscope/internal/model"
	"github.com/arcline/partscope/internal/resolver"
)

var (
	compareJSON     bool
	compareRawNames bool
)

// sideInfo is the per-MPN provenance block in comparison output.
type sideInfo struct {
	MPN           string              `json:"mpn"`
	Provider      string              `json:"provider,omitempty"`
	FailureReason model.FailureReason `json:"failure_reason,omitempty"`
	ProductURL    string              `json:"product_url,omitempty"`
}

// comparisonReport is the full output of a two-part comparison.
type comparisonReport struct {
	Left  sideInfo              `json:"left"`
	Right sideInfo              `json:"right"`
	Rows  []model.ComparisonRow `json:"rows"`
}

// buildComparison runs both lookups and merges them. With canonical
// column folding on, provider-specific labels collapse into shared
// display buckets before the merge.
func buildComparison(ctx context.Context, r *resolver.Resolver, mpn1, mpn2 string, canonical bool) comparisonReport {
	left, right := r.LookupPair(ctx, mpn1, mpn2)

	mergeLeft, mergeRight := left, right
	if canonical {
		mergeLeft = comparison.CanonicalizeResult(left)
		mergeRight = comparison.CanonicalizeResult(right)
	}

	return comparisonReport{
		Left:  sideInfoFor(left),
		Right: sideInfoFor(right),
		Rows:  comparison.Merge(mergeLeft, mergeRight),
	}
}

func sideInfoFor(r model.LookupResult) sideInfo {
	return sideInfo{
		MPN:           r.MPN,
		Provider:      r.Provider,
		FailureReason: r.FailureReason,
		ProductURL:    r.ProductURL,
	}
}

var compareCmd = &cobra.Command{
	Use:   "compare <mpn1> <mpn2>",
	Short: "Compare specification attributes of two part numbers",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		report := buildComparison(cmd.Context(), newResolver(), args[0], args[1], !compareRawNames)

		if compareJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		printComparison(report)
		return nil
	},
}

func printComparison(report comparisonReport) {
	printSide := func(s sideInfo) {
		fmt.Printf("%s: ", s.MPN)
		if s.Provider != "" {
			fmt.Printf("source %s", s.Provider)
		} else {
			fmt.Printf("no data (%s)", s.FailureReason)
		}
		fmt.Println()
	}
	printSide(report.Left)
	printSide(report.Right)
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ATTRIBUTE\t%s\t%s\tMATCH\n", report.Left.MPN, report.Right.MPN)
	for _, row := range report.Rows {
		mark := ""
		if row.Match {
			mark = "✓"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", row.Name, row.Left, row.Right, mark)
	}
	w.Flush()
}

func init() {
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "emit JSON instead of a table")
	compareCmd.Flags().BoolVar(&compareRawNames, "raw-names", false, "keep provider-native attribute names instead of canonical display columns")
	rootCmd.AddCommand(compareCmd)
}
