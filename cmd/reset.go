/*
Copyright © 2025 tranmq
*/
package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/tranmq/docrag-be/config"
	"github.com/tranmq/docrag-be/database"
)

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop and recreate the summary index",
	Long: `Drops the summary class in Weaviate and recreates it empty. The
content store is process-local, so a reset followed by a fresh start
leaves both sides of the index empty and consistent.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		if cfg.IndexBackend != config.IndexBackendWeaviate {
			log.Fatalf("reset only applies to the weaviate index backend, got %q", cfg.IndexBackend)
		}

		index, err := database.NewWeaviateIndex(cfg.Weaviate)
		if err != nil {
			log.Fatalf("Failed to connect to Weaviate: %v", err)
		}
		if err := index.ReInit(); err != nil {
			log.Fatalf("Failed to reset index: %v", err)
		}
		fmt.Println("Summary index dropped and recreated")
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
