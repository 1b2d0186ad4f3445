package handler

import (
	"encoding/json"
	"net/http"

	"github.com/tranmq/docrag-be/service"
	"github.com/tranmq/docrag-be/types"
)

type UploadHandler struct {
	fileService *service.FileService
}

func NewUploadHandler(fileService *service.FileService) *UploadHandler {
	return &UploadHandler{
		fileService: fileService,
	}
}

// HandleUpload accepts a multipart PDF upload and streams ingestion
// progress back as server-sent events, finishing with a done or error
// event carrying the final counts.
func (h *UploadHandler) HandleUpload() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			h.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			h.sendError(w, "Invalid file", http.StatusBadRequest)
			return
		}
		file.Close()

		const maxSize = 50 << 20
		if header.Size > maxSize {
			h.sendError(w, "File too large", http.StatusBadRequest)
			return
		}

		var req types.UploadRequest
		if metadata := r.FormValue("metadata"); metadata != "" {
			if err := json.Unmarshal([]byte(metadata), &req); err != nil {
				h.sendError(w, "Invalid metadata", http.StatusBadRequest)
				return
			}
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			h.sendError(w, "Streaming unsupported", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)

		statusChan := make(chan types.ProcessingDocumentStatus)
		reportChan := make(chan *service.IndexReport, 1)
		errChan := make(chan error, 1)
		go func() {
			defer close(statusChan)
			report, err := h.fileService.UploadFile(r.Context(), req, header, statusChan)
			reportChan <- report
			errChan <- err
		}()

		for status := range statusChan {
			h.sendEvent(w, flusher, "message", status)
		}

		report := <-reportChan
		if err := <-errChan; err != nil {
			h.sendEvent(w, flusher, "error", types.DataResponse{
				Status:  "error",
				Message: err.Error(),
			})
			return
		}
		h.sendEvent(w, flusher, "done", types.DataResponse{
			Status: "success",
			Data: types.UploadResponse{
				OriginalName: header.Filename,
				Indexed:      report.Indexed,
				Skipped:      report.Skipped,
			},
		})
	})
}

func (h *UploadHandler) sendEvent(w http.ResponseWriter, flusher http.Flusher, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	w.Write([]byte("event: " + event + "\ndata: " + string(data) + "\n\n"))
	flusher.Flush()
}

func (h *UploadHandler) sendError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(types.DataResponse{
		Status:  "error",
		Message: message,
	})
}
