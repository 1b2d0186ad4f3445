package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/tranmq/docrag-be/types"
	"github.com/tranmq/docrag-be/utils"
)

// FileService accepts uploaded PDFs, keeps the original file around for
// later serving, and drives partitioning and indexing while reporting
// progress over a channel.
type FileService struct {
	uploadDir string
	pdf       *PDFService
	retriever *Retriever
}

func NewFileService(uploadDir string, pdf *PDFService, retriever *Retriever) *FileService {
	return &FileService{
		uploadDir: uploadDir,
		pdf:       pdf,
		retriever: retriever,
	}
}

// UploadFile saves a multipart upload into the upload directory and ingests
// it. Progress statuses are sent to statusChan if it is non-nil; the
// channel is not closed by this method.
func (s *FileService) UploadFile(ctx context.Context, req types.UploadRequest, fileHeader *multipart.FileHeader, statusChan chan<- types.ProcessingDocumentStatus) (*IndexReport, error) {
	if err := os.MkdirAll(s.uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %v", err)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %v", err)
	}
	defer src.Close()

	destName := fmt.Sprintf("%s_%d.pdf", utils.FileNameWithoutExt(fileHeader.Filename), time.Now().Unix())
	destPath := filepath.Join(s.uploadDir, destName)
	dest, err := os.Create(destPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination file: %v", err)
	}
	if _, err := io.Copy(dest, src); err != nil {
		dest.Close()
		return nil, fmt.Errorf("failed to save uploaded file: %v", err)
	}
	dest.Close()

	if req.Title == "" {
		req.Title = utils.FileNameWithoutExt(fileHeader.Filename)
	}
	req.Source = destPath

	return s.IngestFile(ctx, destPath, req, statusChan)
}

// IngestFile partitions a PDF already on disk and feeds every chunk through
// the retriever. Chunks whose summarization fails are skipped and counted;
// any other error aborts the ingestion.
func (s *FileService) IngestFile(ctx context.Context, filePath string, req types.UploadRequest, statusChan chan<- types.ProcessingDocumentStatus) (*IndexReport, error) {
	if req.Title == "" {
		req.Title = utils.FileNameWithoutExt(filePath)
	}
	if req.Source == "" {
		req.Source = filePath
	}

	chunkChan := make(chan types.Chunk)
	processErr := make(chan error, 1)
	go func() {
		processErr <- s.pdf.ProcessPDF(filePath, req, chunkChan)
	}()

	report := &IndexReport{}
	position := 0
	for chunk := range chunkChan {
		_, err := s.retriever.IndexChunk(ctx, position, chunk)
		if err != nil {
			var summErr *types.SummarizationError
			if errors.As(err, &summErr) {
				report.Skipped++
				report.Failures = append(report.Failures, summErr)
				s.sendStatus(statusChan, report, fmt.Sprintf("skipped %s chunk %d", chunk.Kind, position))
				position++
				continue
			}
			// Drain the partitioner so its goroutine can exit.
			for range chunkChan {
			}
			<-processErr
			return report, err
		}
		report.Indexed++
		s.sendStatus(statusChan, report, fmt.Sprintf("indexed %s chunk %d", chunk.Kind, position))
		position++
	}

	if err := <-processErr; err != nil {
		return report, fmt.Errorf("failed to process %s: %w", filePath, err)
	}
	return report, nil
}

// ServePath resolves a stored document name to its path inside the upload
// directory, refusing anything that escapes it.
func (s *FileService) ServePath(name string) (string, error) {
	cleaned := filepath.Base(name)
	if cleaned != name || cleaned == "." || cleaned == ".." {
		return "", fmt.Errorf("invalid document name %q", name)
	}
	path := filepath.Join(s.uploadDir, cleaned)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("document %q not found", name)
	}
	return path, nil
}

func (s *FileService) sendStatus(statusChan chan<- types.ProcessingDocumentStatus, report *IndexReport, message string) {
	if statusChan == nil {
		return
	}
	total := report.Indexed + report.Skipped
	statusChan <- types.ProcessingDocumentStatus{
		Status:        "processing",
		Message:       message,
		TotalChunks:   total,
		IndexedChunks: report.Indexed,
		SkippedChunks: report.Skipped,
	}
}
