/*
Copyright © 2025 tranmq
*/
package cmd

import (
	"log"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/tranmq/docrag-be/handler"
	"github.com/tranmq/docrag-be/service"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the retrieval server",
	Long:  `Starts a server that handles document upload, search and question answering`,
	Run: func(cmd *cobra.Command, args []string) {
		svc, err := buildServices(cfgFile)
		if err != nil {
			log.Fatalf("Failed to initialize services: %v", err)
		}

		corsHandler := handler.NewCorsHandler()
		searchHandler := handler.NewSearchHandler(svc.retriever, svc.answerer)
		uploadHandler := handler.NewUploadHandler(svc.files)
		documentHandler := handler.NewDocumentHandler(svc.files)
		wsService := service.NewWebSocketService(svc.files)

		mux := http.NewServeMux()
		mux.Handle("/api/v1/documents/search", searchHandler.HandleSearch())
		mux.Handle("/api/v1/documents/ask", searchHandler.HandleAsk())
		mux.Handle("/api/v1/upload", uploadHandler.HandleUpload())
		mux.Handle("/api/v1/pdf", documentHandler.ServeDocument())
		mux.HandleFunc("/api/v1/ingest/ws", wsService.HandleIngest)

		log.Printf("Starting server on port %s...\n", svc.cfg.Port)
		if err := http.ListenAndServe(":"+svc.cfg.Port, corsHandler.CorsMiddleware(mux)); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
