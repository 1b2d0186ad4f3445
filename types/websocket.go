package types

const (
	TypeWebsocketPing       = "ping"
	TypeWebsocketPong       = "pong"
	TypeWebsocketIngest     = "ingest"
	TypeWebsocketProcessing = "processing"
	TypeWebsocketDone       = "done"
	TypeWebsocketError      = "error"
)

type WebsocketRequest struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type WebSocketResponse struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type WebSocketIngestPayload struct {
	File string   `json:"file"`
	Tags []string `json:"tags,omitempty"`
}
