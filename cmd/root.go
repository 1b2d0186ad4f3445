/*
Copyright © 2025 tranmq
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "docrag-be",
	Short: "Multi-modal PDF retrieval backend",
	Long: `docrag-be ingests PDF documents, splits them into text, table and
image chunks, indexes an LLM-generated summary of every chunk for
similarity search, and serves the original chunk content back for
question answering.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config/config.yaml", "config file")
}
