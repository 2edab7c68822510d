// Package form turns the raw values of the recipe form into a query payload.
package form

import (
	"strings"
	"unicode"

	"github.com/pageza/alchemorsel-v2/recipeform/internal/types"
)

// DefaultTopN is the number of recipes requested per submission.
const DefaultTopN = 1

// Separator splits a field into tokens.
const Separator = ","

// Submission holds the raw text of the two form fields.
type Submission struct {
	Ingredients string `form:"ingredients" json:"ingredients"`
	Preferences string `form:"preferences" json:"preferences"`
}

// SplitTokens splits raw on commas and trims every token.
// Empty tokens are kept, so the result always has one more element than raw has commas.
func SplitTokens(raw string) []string {
	parts := strings.Split(raw, Separator)
	for i, p := range parts {
		parts[i] = strings.TrimFunc(p, isTrimmable)
	}
	return parts
}

// BuildQuery assembles the payload for one submission.
func BuildQuery(sub Submission) types.QueryRequest {
	return types.QueryRequest{
		Ingredients: SplitTokens(sub.Ingredients),
		Preferences: SplitTokens(sub.Preferences),
		TopN:        DefaultTopN,
	}
}

// Matches String.prototype.trim: the BOM is stripped, NEL is not.
func isTrimmable(r rune) bool {
	if r == '\u0085' {
		return false
	}
	return unicode.IsSpace(r) || r == '\uFEFF'
}
