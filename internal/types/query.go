package types

// QueryRequest is the payload posted to the recipe API's query endpoint.
type QueryRequest struct {
	Ingredients []string `json:"ingredients"`
	Preferences []string `json:"preferences"`
	TopN        int      `json:"top_n"`
}

// SubmissionResponse is returned by the JSON submission endpoint.
type SubmissionResponse struct {
	Output  string `json:"output"`
	Outcome string `json:"outcome"`
}

// HealthResponse represents the health check payload
type HealthResponse struct {
	Status string `json:"status"`
	Redis  string `json:"redis"`
}
