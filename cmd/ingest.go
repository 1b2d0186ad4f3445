/*
Copyright © 2025 tranmq
*/
package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/tranmq/docrag-be/types"
	"github.com/tranmq/docrag-be/utils"
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Partition, summarize and index a single PDF",
	Run: func(cmd *cobra.Command, args []string) {
		filePath, _ := cmd.Flags().GetString("file")
		tags, _ := cmd.Flags().GetStringArray("tags")
		if filePath == "" {
			log.Fatal("--file is required")
		}

		svc, err := buildServices(cfgFile)
		if err != nil {
			log.Fatalf("Failed to initialize services: %v", err)
		}

		// Keep a copy in the upload directory so the document can be
		// served back after indexing, same as the upload endpoint.
		storedPath, err := utils.CopyFileWithTimestamp(filePath, svc.cfg.UploadDir)
		if err != nil {
			log.Fatalf("Failed to store %s: %v", filePath, err)
		}

		statusChan := make(chan types.ProcessingDocumentStatus)
		go func() {
			for status := range statusChan {
				fmt.Printf("%s (indexed %d, skipped %d)\n",
					status.Message, status.IndexedChunks, status.SkippedChunks)
			}
		}()

		report, err := svc.files.IngestFile(context.Background(), storedPath,
			types.UploadRequest{Title: utils.FileNameWithoutExt(filePath), Tags: tags}, statusChan)
		close(statusChan)
		if err != nil {
			log.Fatalf("Failed to ingest %s: %v", filePath, err)
		}
		fmt.Printf("Done: %d chunks indexed, %d skipped\n", report.Indexed, report.Skipped)
		for _, failure := range report.Failures {
			fmt.Printf("  skipped: %v\n", failure)
		}
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringP("file", "f", "", "Path to the PDF to ingest")
	ingestCmd.Flags().StringArrayP("tags", "g", []string{}, "Tags for the document")
}
