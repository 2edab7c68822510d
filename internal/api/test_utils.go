package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-v2/recipeform/internal/form"
	"github.com/pageza/alchemorsel-v2/recipeform/internal/middleware"
	"github.com/pageza/alchemorsel-v2/recipeform/internal/service"
)

// MockSubmissionService is a mock implementation of ISubmissionService
type MockSubmissionService struct {
	mock.Mock
}

func (m *MockSubmissionService) Submit(ctx context.Context, sub form.Submission) *service.Result {
	args := m.Called(ctx, sub)
	return args.Get(0).(*service.Result)
}

type recordingObserver struct {
	outcomes []string
}

func (r *recordingObserver) ObserveOutcome(outcome string) {
	r.outcomes = append(r.outcomes, outcome)
}

func setupFormRouter(t *testing.T, svc service.ISubmissionService, observer OutcomeObserver) *gin.Engine {
	return setupLimitedFormRouter(t, svc, observer, nil)
}

func setupLimitedFormRouter(t *testing.T, svc service.ISubmissionService, observer OutcomeObserver, limiter *middleware.RateLimiter) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.SetHTMLTemplate(Templates())
	NewFormHandler(svc, observer, zap.NewNop()).RegisterRoutes(router, limiter, nil)
	return router
}

// PerformFormRequest posts url-encoded form values
func PerformFormRequest(r *gin.Engine, path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// PerformJSONRequest posts body encoded as JSON
func PerformJSONRequest(r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
