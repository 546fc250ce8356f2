package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arcline/partscope/internal/model"
)

var lookupJSON bool

var lookupCmd = &cobra.Command{
	Use:   "lookup <mpn>",
	Short: "Resolve specification attributes for one part number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result := newResolver().Lookup(cmd.Context(), args[0])

		if lookupJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		printLookup(result)
		return nil
	},
}

func printLookup(r model.LookupResult) {
	if !r.Resolved() {
		fmt.Printf("%s: no attributes found", r.MPN)
		if r.FailureReason != model.ReasonNone {
			fmt.Printf(" (%s)", r.FailureReason)
		}
		fmt.Println()
		return
	}

	fmt.Printf("%s (source: %s)\n", r.MPN, r.Provider)
	if r.ProductURL != "" {
		fmt.Println(r.ProductURL)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, name := range r.Attributes.Names() {
		v, _ := r.Attributes.Get(name)
		fmt.Fprintf(w, "  %s\t%s\n", name, v)
	}
	w.Flush()
}

func init() {
	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "emit JSON instead of a table")
	rootCmd.AddCommand(lookupCmd)
}
