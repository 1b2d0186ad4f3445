package service

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/tranmq/docrag-be/types"
)

// PDFService partitions a PDF into tagged chunks: running text, table
// blocks, and embedded images. The kind of every chunk is decided here, at
// partition time, so downstream code never has to guess.
type PDFService struct {
	maxChunkSize  int  // Maximum size of each text chunk
	overlapSize   int  // Size of overlap between chunks
	extractImages bool // Extract embedded images into image chunks
}

var DefaultDocumentServiceConfig = types.DocumentServiceConfig{
	MaxChunkSize:  1024,
	OverlapSize:   128,
	ExtractImages: true,
}

// NewPDFService creates a new PDF service with configurable chunk sizes
func NewPDFService(config types.DocumentServiceConfig) *PDFService {
	return &PDFService{
		maxChunkSize:  config.MaxChunkSize,
		overlapSize:   config.OverlapSize,
		extractImages: config.ExtractImages,
	}
}

// ProcessPDF reads and partitions a PDF file
// Parameters:
//   - filePath: Path to the PDF file
//   - req: Upload metadata attached to every chunk
//   - c: Channel to send tagged chunks
//
// Returns:
//   - error: Error if processing fails
func (s *PDFService) ProcessPDF(filePath string, req types.UploadRequest, c chan<- types.Chunk) error {
	defer close(c)
	totalPages, err := getNumPages(filePath)
	if err != nil {
		return err
	}
	log.Println("Total pages: ", totalPages)

	lastText := ""
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		text, err := s.extractText(filePath, pageNum)
		if err != nil {
			log.Printf("Warning: failed to extract text from page %d: %v", pageNum, err)
			continue // Skip failed pages instead of returning error
		}

		metadata := types.DocumentMetadata{
			Source:     req.Source,
			Title:      req.Title,
			PageNum:    pageNum,
			TotalPages: totalPages,
		}

		var pageImages []string
		if s.extractImages {
			pageImages, err = s.extractPageImages(filePath, pageNum)
			if err != nil {
				log.Printf("Warning: failed to extract images from page %d: %v", pageNum, err)
			}
		}

		// Separate table blocks from running text before chunking. Tables
		// get their own chunks and never pass through the overlap logic.
		prose, tables := splitTableBlocks(text)
		for _, table := range tables {
			c <- types.Chunk{
				Kind:     types.ChunkKindTable,
				Content:  table,
				Metadata: metadata,
			}
		}

		prose = strings.TrimSpace(lastText + " " + s.cleanText(prose))
		if prose != "" {
			pageChunks, newLastText := s.createChunks(prose, pageImages, metadata)
			if len(newLastText) > 0 && pageNum < totalPages {
				lastText = newLastText
				for i := 0; i < len(pageChunks)-1; i++ {
					c <- pageChunks[i]
				}
			} else {
				lastText = ""
				for _, chunk := range pageChunks {
					c <- chunk
				}
			}
		}

		for _, img := range pageImages {
			c <- types.Chunk{
				Kind:     types.ChunkKindImage,
				Content:  img,
				Metadata: metadata,
			}
		}
	}

	return nil
}

// extractText attempts to extract text from a specific page using multiple methods
func (s *PDFService) extractText(filePath string, pageNumber int) (string, error) {
	text, err := s.extractTextWithPdftotext(filePath, pageNumber)
	if err != nil || text == "" {
		text, err = s.extractTextWithTesseract(filePath, pageNumber)
		if err != nil {
			return "", fmt.Errorf("failed to extract text: %w", err)
		}
	}
	return text, nil
}

// createChunks splits text into overlapping chunks with proper sentence
// boundaries. Images extracted from the same page are attached to the first
// chunk so a text block keeps a handle on the figures inside it.
func (s *PDFService) createChunks(text string, pageImages []string, metadata types.DocumentMetadata) ([]types.Chunk, string) {
	var chunks []types.Chunk
	textLen := len(text)
	lastText := ""

	newChunk := func(content string) types.Chunk {
		chunk := types.Chunk{
			Kind:     types.ChunkKindText,
			Content:  content,
			Metadata: metadata,
		}
		if len(chunks) == 0 {
			chunk.Images = pageImages
		}
		return chunk
	}

	// Return early if text fits in one chunk
	if textLen <= s.maxChunkSize {
		lastText = text
		return []types.Chunk{newChunk(text)}, lastText
	}

	currentPos := 0
	for currentPos < textLen {
		chunkEnd := currentPos + s.maxChunkSize
		if chunkEnd >= textLen {
			// Handle last chunk
			chunk := strings.TrimSpace(text[currentPos:])
			if chunk != "" {
				chunks = append(chunks, newChunk(chunk))
				lastText = chunk
			}
			break
		}

		// Find nearest sentence end
		sentenceEnd := chunkEnd
		for i := chunkEnd; i > currentPos; i-- {
			if text[i] == '.' || text[i] == '?' || text[i] == '!' {
				sentenceEnd = i + 1
				break
			}
		}

		// If no sentence end found, use word boundary
		if sentenceEnd == chunkEnd {
			for i := chunkEnd; i > currentPos; i-- {
				if text[i] == ' ' {
					sentenceEnd = i
					break
				}
			}
		}

		chunk := strings.TrimSpace(text[currentPos:sentenceEnd])
		if chunk != "" {
			chunks = append(chunks, newChunk(chunk))
		}

		// Update position for next chunk
		next := sentenceEnd - s.overlapSize
		if next <= currentPos {
			next = sentenceEnd
		}
		currentPos = next
	}

	return chunks, lastText
}

// tableRowPattern matches lines whose cells are separated by runs of two or
// more spaces, the shape pdftotext's layout mode gives aligned columns.
var tableRowPattern = regexp.MustCompile(`\S(  +)\S`)

// splitTableBlocks separates table-shaped line runs from running text.
// Three or more consecutive lines with column alignment count as a table.
func splitTableBlocks(text string) (prose string, tables []string) {
	lines := strings.Split(text, "\n")

	var proseLines []string
	var tableLines []string

	flushTable := func() {
		if len(tableLines) >= 3 {
			tables = append(tables, strings.Join(tableLines, "\n"))
		} else {
			proseLines = append(proseLines, tableLines...)
		}
		tableLines = nil
	}

	for _, line := range lines {
		if len(tableRowPattern.FindAllString(line, -1)) >= 2 {
			tableLines = append(tableLines, line)
			continue
		}
		flushTable()
		proseLines = append(proseLines, line)
	}
	flushTable()

	return strings.Join(proseLines, "\n"), tables
}

// extractPageImages pulls embedded images off a page with pdfimages and
// returns them base64-encoded.
func (s *PDFService) extractPageImages(pdfPath string, pageNumber int) ([]string, error) {
	tempFolder, err := os.MkdirTemp("", "docrag-images-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempFolder)

	extractCmd := exec.Command("pdfimages",
		"-f", strconv.Itoa(pageNumber),
		"-l", strconv.Itoa(pageNumber),
		"-j", "-png",
		pdfPath, filepath.Join(tempFolder, "img"))
	if err := extractCmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to run pdfimages: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(tempFolder, "img-*"))
	if err != nil {
		return nil, fmt.Errorf("failed to read image files: %w", err)
	}

	var images []string
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		// pdfimages emits tiny decorations too; skip anything under 1KB
		if len(data) < 1024 {
			continue
		}
		images = append(images, base64.StdEncoding.EncodeToString(data))
	}
	return images, nil
}

// extractTextWithPdftotext extracts text using pdftotext utility
// Parameters:
//   - filepath: Path to the PDF file
//   - pageNumber: Page number to extract text from
//
// Returns:
//   - string: Extracted text
//   - error: Error if extraction fails
func (s *PDFService) extractTextWithPdftotext(filepath string, pageNumber int) (string, error) {
	pdftotextCmd := exec.Command("pdftotext", "-f", strconv.Itoa(pageNumber),
		"-l", strconv.Itoa(pageNumber),
		"-enc", "UTF-8", "-nopgbrk", "-layout",
		filepath, "-")
	var txtOut bytes.Buffer
	pdftotextCmd.Stdout = &txtOut

	if err := pdftotextCmd.Run(); err != nil {
		log.Printf("Error executing pdftotext command for page %d: %v", pageNumber, err)
	}
	pageText := txtOut.String()
	if trimmed := strings.TrimSpace(pageText); len(trimmed) > 0 {
		return trimmed, nil
	}
	return "", fmt.Errorf("got nothing at page %d", pageNumber)
}

// extractTextWithTesseract extracts text using OCR when pdftotext fails
// Parameters:
//   - pdfPath: Path to the PDF file
//   - pageNumber: Page number to extract text from
//
// Returns:
//   - string: Extracted text
//   - error: Error if extraction fails
func (s *PDFService) extractTextWithTesseract(pdfPath string, pageNumber int) (string, error) {
	log.Println("Try extracting with tesseract")
	tempFolder, err := os.MkdirTemp("", "docrag-ocr-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempFolder)

	convertCmd := exec.Command("pdftoppm",
		"-f", strconv.Itoa(pageNumber),
		"-l", strconv.Itoa(pageNumber),
		"-png", pdfPath, filepath.Join(tempFolder, "page"))
	if err := convertCmd.Run(); err != nil {
		return "", fmt.Errorf("failed to convert page %d to image: %w", pageNumber, err)
	}
	pattern := filepath.Join(tempFolder, "page-*.png")
	file, err := filepath.Glob(pattern)
	if err != nil || len(file) == 0 {
		return "", fmt.Errorf("failed to read image files: %w", err)
	}
	imageFile := file[0]
	ocrCmd := exec.Command("tesseract",
		imageFile,
		"stdout",
		"-l", "eng",
		"--oem", "3",
		"--psm", "3",
	)
	var ocrOut bytes.Buffer
	ocrCmd.Stdout = &ocrOut
	if err := ocrCmd.Run(); err != nil {
		return "", fmt.Errorf("failed to run tesseract: %w", err)
	}
	ocrText := ocrOut.String()
	if trimmed := strings.TrimSpace(ocrText); len(trimmed) > 0 {
		return trimmed, nil
	}
	return "", fmt.Errorf("got nothing at page %d", pageNumber)
}

// getNumPages uses pdfinfo to get the total number of pages in a PDF file
// Parameters:
//   - pdfPath: Path to the PDF file
//
// Returns:
//   - int: Number of pages
//   - error: Error if page count cannot be determined
func getNumPages(pdfPath string) (int, error) {
	cmd := exec.Command("pdfinfo", pdfPath)
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("error running pdfinfo: %v", err)
	}

	scanner := bufio.NewScanner(&out)
	re := regexp.MustCompile(`Pages:\s+(\d+)`)
	for scanner.Scan() {
		line := scanner.Text()
		if matches := re.FindStringSubmatch(line); len(matches) == 2 {
			return strconv.Atoi(matches[1])
		}
	}

	return 0, fmt.Errorf("unable to determine page count from pdfinfo")
}

func (s *PDFService) cleanText(text string) string {
	replacements := map[string]string{
		"\x00":   "",   // Null character
		"\uFFFD": "",   // Unicode replacement character
		"\x1b":   "",   // Escape character
		"\r":     "",   // Carriage return
		"\f":     "\n", // Form feed to newline
		"  ":     " ",  // Multiple spaces to single space
	}
	cleaned := text
	for old, new := range replacements {
		cleaned = strings.ReplaceAll(cleaned, old, new)
	}

	return strings.TrimSpace(cleaned)
}
