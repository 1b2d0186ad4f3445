/*
Copyright © 2025 tranmq
*/
package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tranmq/docrag-be/types"
	"github.com/tranmq/docrag-be/utils"
)

// batchIngestCmd represents the batch-ingest command
var batchIngestCmd = &cobra.Command{
	Use:   "batch-ingest",
	Short: "Ingest every PDF in a directory",
	Run: func(cmd *cobra.Command, args []string) {
		directory, _ := cmd.Flags().GetString("directory")
		tags, _ := cmd.Flags().GetStringArray("tags")
		if directory == "" {
			log.Fatal("--directory is required")
		}

		svc, err := buildServices(cfgFile)
		if err != nil {
			log.Fatalf("Failed to initialize services: %v", err)
		}

		files, err := os.ReadDir(directory)
		if err != nil {
			log.Fatalf("Failed to read directory: %v", err)
		}
		for _, file := range files {
			if file.IsDir() || !strings.EqualFold(filepath.Ext(file.Name()), ".pdf") {
				continue
			}
			filePath := filepath.Join(directory, file.Name())
			storedPath, err := utils.CopyFileWithTimestamp(filePath, svc.cfg.UploadDir)
			if err != nil {
				log.Printf("Failed to store %s: %v", filePath, err)
				continue
			}
			report, err := svc.files.IngestFile(context.Background(), storedPath,
				types.UploadRequest{Title: utils.FileNameWithoutExt(file.Name()), Tags: tags}, nil)
			if err != nil {
				log.Printf("Failed to ingest %s: %v", filePath, err)
				continue
			}
			fmt.Printf("%s: %d chunks indexed, %d skipped\n", file.Name(), report.Indexed, report.Skipped)
		}
	},
}

func init() {
	rootCmd.AddCommand(batchIngestCmd)
	batchIngestCmd.Flags().String("directory", "", "Path to the directory of PDFs")
	batchIngestCmd.Flags().StringArrayP("tags", "g", []string{}, "Tags for the documents")
}
