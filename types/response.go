package types

type DataResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type SearchResponse struct {
	Chunks []RetrievedChunk `json:"chunks"`
}

type AskResponse struct {
	Answer string           `json:"answer"`
	Chunks []RetrievedChunk `json:"chunks"`
}

type UploadResponse struct {
	OriginalName string `json:"original_name,omitempty"`
	Indexed      int    `json:"indexed"`
	Skipped      int    `json:"skipped"`
}

type ProcessingDocumentStatus struct {
	Status         string  `json:"status"`
	Message        string  `json:"message"`
	Progress       float64 `json:"progress"`
	TotalChunks    int     `json:"total_chunks"`
	IndexedChunks  int     `json:"indexed_chunks"`
	SkippedChunks  int     `json:"skipped_chunks"`
	CurrentSummary string  `json:"current_summary,omitempty"`
}
