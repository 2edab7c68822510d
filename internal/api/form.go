package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-v2/recipeform/internal/form"
	"github.com/pageza/alchemorsel-v2/recipeform/internal/middleware"
	"github.com/pageza/alchemorsel-v2/recipeform/internal/service"
	"github.com/pageza/alchemorsel-v2/recipeform/internal/types"
)

// MsgRateLimited replaces the output when a client submits too often.
const MsgRateLimited = "Too many requests. Please wait a moment and try again."

// OutcomeObserver is notified once per finished submission.
type OutcomeObserver interface {
	ObserveOutcome(outcome string)
}

// FormHandler serves the recipe form and handles its submissions
type FormHandler struct {
	submissions service.ISubmissionService
	observer    OutcomeObserver
	logger      *zap.Logger
}

// NewFormHandler creates a new FormHandler instance. observer may be nil.
func NewFormHandler(submissions service.ISubmissionService, observer OutcomeObserver, logger *zap.Logger) *FormHandler {
	return &FormHandler{
		submissions: submissions,
		observer:    observer,
		logger:      logger,
	}
}

// RegisterRoutes registers the page and submission routes. limiter guards
// the submitting routes; limiter and cors may be nil.
func (h *FormHandler) RegisterRoutes(router *gin.Engine, limiter *middleware.RateLimiter, cors gin.HandlerFunc) {
	var pageChain, apiChain []gin.HandlerFunc
	if limiter != nil {
		pageChain = append(pageChain, limiter.RateLimitMiddlewareWith(h.rateLimitedPage))
		apiChain = append(apiChain, limiter.RateLimitMiddleware())
	}

	router.GET("/", h.Page)
	router.POST("/", append(pageChain, h.SubmitPage)...)

	v1 := router.Group("/api/v1")
	if cors != nil {
		v1.Use(cors)
		v1.OPTIONS("/submissions", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	}
	v1.POST("/submissions", append(apiChain, h.Submit)...)
}

// Page renders the empty form.
func (h *FormHandler) Page(c *gin.Context) {
	c.HTML(http.StatusOK, pageTemplate, pageData{})
}

// SubmitPage handles a plain form post and renders the page again with the
// result, so the browser stays on the form.
func (h *FormHandler) SubmitPage(c *gin.Context) {
	var sub form.Submission
	// unbindable bodies count as empty fields
	_ = c.ShouldBind(&sub)

	res := h.run(c, sub)
	c.HTML(http.StatusOK, pageTemplate, pageData{
		Ingredients: sub.Ingredients,
		Preferences: sub.Preferences,
		Output:      res.Output,
	})
}

// rateLimitedPage keeps the browser on the form when the limit is hit.
func (h *FormHandler) rateLimitedPage(c *gin.Context, retryAfter time.Duration) {
	var sub form.Submission
	_ = c.ShouldBind(&sub)

	h.logger.Info("submission rate limited",
		zap.Duration("retry_after", retryAfter),
		zap.String("request_id", c.GetString(middleware.RequestIDKey)),
	)
	c.HTML(http.StatusOK, pageTemplate, pageData{
		Ingredients: sub.Ingredients,
		Preferences: sub.Preferences,
		Output:      MsgRateLimited,
	})
}

// Submit handles a submission from script and answers with the output text.
func (h *FormHandler) Submit(c *gin.Context) {
	var sub form.Submission
	if err := c.ShouldBind(&sub); err != nil {
		h.logger.Debug("submission body not bindable", zap.Error(err))
	}

	res := h.run(c, sub)
	c.JSON(http.StatusOK, types.SubmissionResponse{
		Output:  res.Output,
		Outcome: string(res.Outcome),
	})
}

func (h *FormHandler) run(c *gin.Context, sub form.Submission) *service.Result {
	res := h.submissions.Submit(c.Request.Context(), sub)
	if h.observer != nil {
		h.observer.ObserveOutcome(string(res.Outcome))
	}
	h.logger.Info("submission handled",
		zap.String("outcome", string(res.Outcome)),
		zap.String("request_id", c.GetString(middleware.RequestIDKey)),
	)
	return res
}
