package handler

// errorResponse documents the failure envelope rendered by the central error
// handler. Declared here so swagger annotations can reference it.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
