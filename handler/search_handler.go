package handler

import (
	"encoding/json"
	"net/http"

	"github.com/tranmq/docrag-be/service"
	"github.com/tranmq/docrag-be/types"
)

const defaultTopK = 5

type SearchHandler struct {
	retriever *service.Retriever
	answerer  service.Answerer
}

func NewSearchHandler(retriever *service.Retriever, answerer service.Answerer) *SearchHandler {
	return &SearchHandler{
		retriever: retriever,
		answerer:  answerer,
	}
}

func (h *SearchHandler) HandleSearch() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.Method != http.MethodPost {
			h.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req types.SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.sendError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Query == "" {
			h.sendError(w, "Query is required", http.StatusBadRequest)
			return
		}
		if req.TopK == 0 {
			req.TopK = defaultTopK
		}

		chunks, err := h.retriever.Search(r.Context(), req.Query, req.TopK)
		if err != nil {
			h.sendError(w, "Search failed: "+err.Error(), http.StatusInternalServerError)
			return
		}
		h.sendSuccess(w, types.SearchResponse{Chunks: chunks})
	})
}

func (h *SearchHandler) HandleAsk() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.Method != http.MethodPost {
			h.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req types.AskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.sendError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Question == "" {
			h.sendError(w, "Question is required", http.StatusBadRequest)
			return
		}
		query := req.SearchRequest.Query
		if query == "" {
			query = req.Question
		}
		topK := req.SearchRequest.TopK
		if topK == 0 {
			topK = defaultTopK
		}

		chunks, err := h.retriever.Search(r.Context(), query, topK)
		if err != nil {
			h.sendError(w, "Search failed: "+err.Error(), http.StatusInternalServerError)
			return
		}

		answer, err := h.answerer.Answer(r.Context(), req.Question, chunks)
		if err != nil {
			h.sendError(w, "Answer failed: "+err.Error(), http.StatusInternalServerError)
			return
		}
		h.sendSuccess(w, types.AskResponse{Answer: answer, Chunks: chunks})
	})
}

func (h *SearchHandler) sendError(w http.ResponseWriter, message string, status int) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(types.DataResponse{
		Status:  "error",
		Message: message,
	})
}

func (h *SearchHandler) sendSuccess(w http.ResponseWriter, data interface{}) {
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(types.DataResponse{
		Status: "success",
		Data:   data,
	})
}
