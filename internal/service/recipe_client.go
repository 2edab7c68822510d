package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pageza/alchemorsel-v2/recipeform/internal/types"
)

// ContentTypeJSON is sent with every query.
const ContentTypeJSON = "application/json"

// RecipeResponse is what came back from the recipe API.
type RecipeResponse struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the status code is in the 2xx range.
func (r *RecipeResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// HTTPRecipeClient talks to the recipe API over HTTP
type HTTPRecipeClient struct {
	apiURL     string
	httpClient *http.Client
}

// NewHTTPRecipeClient creates a client for the given query endpoint.
// A zero timeout leaves the call unbounded apart from the caller's context.
func NewHTTPRecipeClient(apiURL string, timeout time.Duration) *HTTPRecipeClient {
	return &HTTPRecipeClient{
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// QueryRecipe posts the payload once. The body is only read for 2xx responses.
func (c *HTTPRecipeClient) QueryRecipe(ctx context.Context, req *types.QueryRequest) (*RecipeResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", ContentTypeJSON)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	out := &RecipeResponse{StatusCode: resp.StatusCode}
	if !out.OK() {
		return out, nil
	}

	out.Body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return out, nil
}
