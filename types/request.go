package types

type SearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

type AskRequest struct {
	Question      string        `json:"question"`
	SearchRequest SearchRequest `json:"search_request"`
}
