package types

// ChunkKind tags the variant of an extracted chunk. The kind is decided at
// partition time, never inferred downstream.
type ChunkKind string

const (
	ChunkKindText  ChunkKind = "text"
	ChunkKindTable ChunkKind = "table"
	ChunkKindImage ChunkKind = "image"
)

// Chunk is a unit of extracted document content. Content holds the raw text
// for text and table chunks, and base64-encoded image bytes for image
// chunks. Text chunks may additionally carry base64 images found inside the
// chunk's page range.
type Chunk struct {
	Kind     ChunkKind        // variant of this chunk
	Content  string           // raw text, or base64 image bytes
	Images   []string         // embedded base64 sub-images, text chunks only
	Metadata DocumentMetadata // associated metadata for the chunk
}

// DocumentMetadata contains metadata information for document chunks
type DocumentMetadata struct {
	Title      string // Title of the source document
	Source     string // Source file path
	PageNum    int    // Page number the chunk starts on
	TotalPages int    // Total number of pages in the document
}

// SummaryEntry pairs a generated identifier with the searchable summary of
// one chunk. Only summaries are embedded; the original content lives in the
// content store under the same identifier.
type SummaryEntry struct {
	ID      string
	Summary string
	Kind    ChunkKind
}

// RetrievedChunk is an original chunk resolved from the content store after
// a similarity search over summaries, ordered closest first.
type RetrievedChunk struct {
	ID       string           `json:"id"`
	Kind     ChunkKind        `json:"kind"`
	Content  string           `json:"content"`
	Images   []string         `json:"images,omitempty"`
	Metadata DocumentMetadata `json:"metadata"`
}

// DocumentServiceConfig contains configuration options for PDF processing
type DocumentServiceConfig struct {
	MaxChunkSize  int  // Maximum size for text chunks
	OverlapSize   int  // Size of overlap between chunks
	ExtractImages bool // Rasterize pages that carry embedded images
}

type UploadRequest struct {
	Title  string   `json:"title"`
	Source string   `json:"source"`
	Tags   []string `json:"tags"`
}
