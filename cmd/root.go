package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arcline/partscope/internal/catalog"
	"github.com/arcline/partscope/internal/config"
	"github.com/arcline/partscope/internal/resolver"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "partscope",
	Short: "Part attribute lookup and comparison",
	Long:  "Looks up manufacturer part numbers against Digi-Key with Mouser fallback, compares specification attributes side by side, and searches for replacement parts.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Optional .env for local credentials.
		_ = godotenv.Load()

		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// newResolver wires the fixed primary-then-secondary cascade from the
// loaded credentials.
func newResolver() *resolver.Resolver {
	return resolver.New(
		catalog.NewDigiKeySource(cfg.DigiKey),
		catalog.NewMouserSource(cfg.Mouser),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
