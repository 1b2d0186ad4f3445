package handler

import (
	"encoding/json"
	"net/http"

	"github.com/tranmq/docrag-be/service"
	"github.com/tranmq/docrag-be/types"
)

type DocumentHandler struct {
	fileService *service.FileService
}

func NewDocumentHandler(fileService *service.FileService) *DocumentHandler {
	return &DocumentHandler{
		fileService: fileService,
	}
}

// ServeDocument serves an original uploaded PDF by stored name, so a
// consumer of search results can fetch the source document.
func (h *DocumentHandler) ServeDocument() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		if name == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(types.DataResponse{
				Status:  "error",
				Message: "name query parameter is required",
			})
			return
		}

		path, err := h.fileService.ServePath(name)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(types.DataResponse{
				Status:  "error",
				Message: err.Error(),
			})
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		http.ServeFile(w, r, path)
	})
}
