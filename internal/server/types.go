package server

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// EnginesResponse lists the registered OCR engines
type EnginesResponse struct {
	Engines []string `json:"engines"`
}
