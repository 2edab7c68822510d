package service

import (
	"context"

	"github.com/pageza/alchemorsel-v2/recipeform/internal/form"
	"github.com/pageza/alchemorsel-v2/recipeform/internal/types"
)

// RecipeClient sends a query payload to the recipe API.
type RecipeClient interface {
	QueryRecipe(ctx context.Context, req *types.QueryRequest) (*RecipeResponse, error)
}

// ISubmissionService defines the interface for handling form submissions
type ISubmissionService interface {
	Submit(ctx context.Context, sub form.Submission) *Result
}
