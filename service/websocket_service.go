package service

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tranmq/docrag-be/types"
)

// WebSocketService streams ingestion progress to a connected client. The
// client sends one ingest request naming a file already present in the
// upload directory; the server answers with a processing status per chunk
// and a final done or error message.
type WebSocketService struct {
	files    *FileService
	upgrader websocket.Upgrader
}

func NewWebSocketService(files *FileService) *WebSocketService {
	return &WebSocketService{
		files: files,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins (adjust for production)
			},
		},
	}
}

func (s *WebSocketService) HandleIngest(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(512 * 1024) // 512KB max message size
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	for {
		var req types.WebsocketRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		switch req.Type {
		case types.TypeWebsocketPing:
			s.send(conn, types.WebSocketResponse{Type: types.TypeWebsocketPong})
		case types.TypeWebsocketIngest:
			s.handleIngestRequest(ctx, conn, req.Payload)
			// Ingestion can outlast the read deadline; give the client a
			// fresh window for its next request.
			conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		default:
			s.sendError(conn, "unknown request type: "+req.Type)
		}
	}
}

func (s *WebSocketService) handleIngestRequest(ctx context.Context, conn *websocket.Conn, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		s.sendError(conn, "invalid payload")
		return
	}
	var ingest types.WebSocketIngestPayload
	if err := json.Unmarshal(raw, &ingest); err != nil {
		s.sendError(conn, "invalid ingest payload")
		return
	}

	path, err := s.files.ServePath(ingest.File)
	if err != nil {
		s.sendError(conn, err.Error())
		return
	}

	statusChan := make(chan types.ProcessingDocumentStatus)
	reportChan := make(chan *IndexReport, 1)
	errChan := make(chan error, 1)
	go func() {
		defer close(statusChan)
		report, err := s.files.IngestFile(ctx, path, types.UploadRequest{Tags: ingest.Tags}, statusChan)
		reportChan <- report
		errChan <- err
	}()

	for status := range statusChan {
		s.send(conn, types.WebSocketResponse{
			Type:    types.TypeWebsocketProcessing,
			Payload: status,
		})
	}

	report := <-reportChan
	if err := <-errChan; err != nil {
		s.sendError(conn, err.Error())
		return
	}
	s.send(conn, types.WebSocketResponse{
		Type: types.TypeWebsocketDone,
		Payload: types.UploadResponse{
			OriginalName: ingest.File,
			Indexed:      report.Indexed,
			Skipped:      report.Skipped,
		},
	})
}

func (s *WebSocketService) send(conn *websocket.Conn, resp types.WebSocketResponse) {
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("WebSocket write error: %v", err)
	}
}

func (s *WebSocketService) sendError(conn *websocket.Conn, message string) {
	s.send(conn, types.WebSocketResponse{
		Type:    types.TypeWebsocketError,
		Payload: map[string]string{"message": message},
	})
}
