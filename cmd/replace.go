package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/arcline/partscope/internal/ranking"
	"github.com/arcline/partscope/internal/replacement"
	"github.com/arcline/partscope/pkg/claude"
	"github.com/arcline/partscope/pkg/digikey"
)

var (
	replaceBaseMode string
	replaceDump     bool
)

var replaceCmd = &cobra.Command{
	Use:   "replace <mpn>",
	Short: "Search for replacement parts by iterative parametric filtering",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.DigiKey.Configured() {
			return eris.New("replacement search requires Digi-Key credentials")
		}

		var tokens digikey.TokenSource
		if cfg.DigiKey.AccessToken != "" {
			tokens = digikey.StaticTokenSource{AccessToken: cfg.DigiKey.AccessToken}
		} else {
			tokens = digikey.NewClientCredentialsTokenSource(
				cfg.DigiKey.ClientID, cfg.DigiKey.ClientSecret,
				cfg.DigiKey.BaseURL+"/v1/oauth2/token", nil)
		}
		client := digikey.NewClient(cfg.DigiKey.ClientID, tokens,
			digikey.WithBaseURL(cfg.DigiKey.BaseURL),
			digikey.WithLocale(cfg.DigiKey.LocaleSite, cfg.DigiKey.LocaleLang),
		)

		var ranker replacement.ParamRanker
		if cfg.Anthropic.Key != "" {
			ranker = ranking.New(claude.NewClient(cfg.Anthropic.Key), cfg.Anthropic.Model, cfg.Anthropic.MaxTokens)
		}

		searcher := replacement.NewSearcher(client, ranker, newResolver().Lookup)

		mode := replacement.BaseMode(replaceBaseMode)
		if replaceBaseMode == "" {
			mode = replacement.BaseMode(cfg.Replacement.BaseMode)
		}

		result, err := searcher.Search(cmd.Context(), args[0], replacement.Options{
			RecordCount: cfg.Replacement.RecordCount,
			MaxRounds:   cfg.Replacement.MaxRounds,
			BaseMode:    mode,
		})
		if err != nil {
			return eris.Wrap(err, "replacement search")
		}

		if replaceDump {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		fmt.Printf("%s: %d candidate(s)\n", result.MPN, len(result.Candidates))
		for _, round := range result.Rounds {
			fmt.Printf("  try %d: used=%d dropped=%d → results=%d\n",
				round.Attempt, len(round.UsedValues), round.Dropped, round.Results)
		}
		for _, c := range result.Candidates {
			fmt.Printf("  - %s by %s  %s\n", c.MPN, c.Manufacturer, c.ProductURL)
		}
		if result.Note != "" {
			fmt.Println(result.Note)
		}
		return nil
	},
}

func init() {
	replaceCmd.Flags().StringVar(&replaceBaseMode, "base-mode", "", "filter base-family parts: exclude_base or only_base")
	replaceCmd.Flags().BoolVar(&replaceDump, "dump", false, "pretty-print the full JSON result")
	rootCmd.AddCommand(replaceCmd)
}
