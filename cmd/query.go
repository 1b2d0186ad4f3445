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
)

// queryCmd represents the query command
var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Search the index from the terminal",
	Run: func(cmd *cobra.Command, args []string) {
		query, _ := cmd.Flags().GetString("query")
		topK, _ := cmd.Flags().GetInt("top-k")
		ask, _ := cmd.Flags().GetBool("ask")
		if query == "" {
			log.Fatal("--query is required")
		}

		svc, err := buildServices(cfgFile)
		if err != nil {
			log.Fatalf("Failed to initialize services: %v", err)
		}

		ctx := context.Background()
		chunks, err := svc.retriever.Search(ctx, query, topK)
		if err != nil {
			log.Fatalf("Search failed: %v", err)
		}

		for i, chunk := range chunks {
			content := chunk.Content
			if chunk.Kind == types.ChunkKindImage {
				content = fmt.Sprintf("<image, %d base64 bytes>", len(chunk.Content))
			}
			fmt.Printf("[%d] %s (%s, page %d)\n%s\n\n",
				i+1, chunk.Metadata.Title, chunk.Kind, chunk.Metadata.PageNum, content)
		}

		if ask {
			answer, err := svc.answerer.Answer(ctx, query, chunks)
			if err != nil {
				log.Fatalf("Answer failed: %v", err)
			}
			fmt.Println("Answer:")
			fmt.Println(answer)
		}
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringP("query", "q", "", "Query text")
	queryCmd.Flags().IntP("top-k", "k", 5, "Number of results")
	queryCmd.Flags().Bool("ask", false, "Generate an answer from the retrieved chunks")
}
