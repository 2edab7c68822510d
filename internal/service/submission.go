package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-v2/recipeform/internal/form"
	"github.com/pageza/alchemorsel-v2/recipeform/internal/types"
)

// Messages shown in place of a recipe.
const (
	MsgStatusError = "Error fetching recipe."
	MsgFailure     = "An error occurred."
)

// Outcome classifies how a submission ended.
type Outcome string

const (
	OutcomeRecipe      Outcome = "recipe"
	OutcomeStatusError Outcome = "status_error"
	OutcomeFailure     Outcome = "failure"
)

var errInvalidJSON = errors.New("response body is not valid JSON")

// response bodies may start with a byte order mark, which JSON parsing skips
var utf8BOM = []byte("\xef\xbb\xbf")

// Result is the text to place in the output element plus what produced it.
type Result struct {
	Outcome Outcome
	Output  string
	Query   types.QueryRequest
}

// SubmissionService handles one form submission end to end
type SubmissionService struct {
	client RecipeClient
	logger *zap.Logger
}

// NewSubmissionService creates a new SubmissionService instance
func NewSubmissionService(client RecipeClient, logger *zap.Logger) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{client: client, logger: logger}
}

// Submit builds the payload, calls the recipe API once and maps the answer to
// the output text. Failures are logged, never returned.
func (s *SubmissionService) Submit(ctx context.Context, sub form.Submission) (res *Result) {
	res = &Result{Query: form.BuildQuery(sub)}

	defer func() {
		if r := recover(); r != nil {
			s.fail(res, fmt.Errorf("panic during submission: %v", r))
		}
	}()

	resp, err := s.client.QueryRecipe(ctx, &res.Query)
	if err != nil {
		s.fail(res, err)
		return res
	}

	if !resp.OK() {
		s.logger.Warn("recipe API returned non-success status", zap.Int("status", resp.StatusCode))
		res.Outcome = OutcomeStatusError
		res.Output = MsgStatusError
		return res
	}

	pretty, err := PrettyJSON(resp.Body)
	if err != nil {
		s.fail(res, err)
		return res
	}

	res.Outcome = OutcomeRecipe
	res.Output = pretty
	return res
}

func (s *SubmissionService) fail(res *Result, err error) {
	s.logger.Error("recipe query failed",
		zap.Error(err),
		zap.Strings("ingredients", res.Query.Ingredients),
		zap.Strings("preferences", res.Query.Preferences),
	)
	res.Outcome = OutcomeFailure
	res.Output = MsgFailure
}

// PrettyJSON re-indents a JSON document with two spaces. Key order and the
// literal text of every value are kept.
func PrettyJSON(body []byte) (string, error) {
	body = bytes.TrimSpace(bytes.TrimPrefix(body, utf8BOM))
	if !json.Valid(body) {
		return "", errInvalidJSON
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return "", fmt.Errorf("failed to indent response: %w", err)
	}
	return buf.String(), nil
}
