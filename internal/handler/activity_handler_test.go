package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/praxis-go-api/internal/dto"
	"github.com/noah-isme/praxis-go-api/internal/generation"
	"github.com/noah-isme/praxis-go-api/internal/service"
)

type stubActivityService struct {
	response dto.ActivityResponse
	err      error
}

func (s stubActivityService) Generate(ctx context.Context, payload dto.GenerateActivityRequest) (dto.ActivityResponse, error) {
	if s.err != nil {
		return dto.ActivityResponse{}, s.err
	}
	return s.response, nil
}

func (s stubActivityService) Get(ctx context.Context, id string) (dto.ActivityResponse, error) {
	if s.err != nil {
		return dto.ActivityResponse{}, s.err
	}
	if s.response.ID != id {
		return dto.ActivityResponse{}, service.ErrActivityNotFound
	}
	return s.response, nil
}

type stubProgress struct {
	events chan generation.Event
}

func (s stubProgress) Register(string) generation.ProgressSink { return nil }
func (s stubProgress) Release(string) {}
func (s stubProgress) Start(context.Context) {}
func (s stubProgress) Subscribe(id string) (<-chan generation.Event, func(), error) {
	if s.events == nil {
		return nil, nil, service.ErrRunNotFound
	}
	return s.events, func() {}, nil
}

func newTestApp(activitySvc service.ActivityService, progress service.ProgressService, role string) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v2/activities", func(c *fiber.Ctx) error {
		if role != "" {
			c.Locals("user_role", role)
		}
		return c.Next()
	})
	NewActivityHandler(activitySvc, progress, zerolog.Nop()).Register(group)
	return app
}

func generateBody(t *testing.T) *strings.Reader {
	t.Helper()
	payload := dto.GenerateActivityRequest{
		Language:       "python",
		ProblemCount:   1,
		DifficultyPlan: []dto.DifficultyPlanEntry{{Difficulty: "easy", Count: 1}},
		TopicTags:      []string{"strings"},
		ProblemStyle:   "stdout",
	}
	encoded, err := json.Marshal(payload)
	require.NoError(t, err)
	return strings.NewReader(string(encoded))
}

func TestGenerateRequiresTeacherRole(t *testing.T) {
	app := newTestApp(stubActivityService{}, stubProgress{}, "student")

	req := httptest.NewRequest(http.MethodPost, "/api/v2/activities/generate", generateBody(t))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestGenerateReturnsCreatedActivity(t *testing.T) {
	svc := stubActivityService{response: dto.ActivityResponse{ID: "activity-1", Language: "python", Status: "ready", CreatedAt: time.Now().UTC()}}
	app := newTestApp(svc, stubProgress{}, "teacher")

	req := httptest.NewRequest(http.MethodPost, "/api/v2/activities/generate", generateBody(t))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	require.Contains(t, string(body), `"activity-1"`)
}

func TestGenerateMapsSlotFailures(t *testing.T) {
	failure := &generation.SlotFailure{Kind: generation.FailureQuality, SlotIndex: 0, ObligationID: "tests.reject_baselines", Message: "tests too weak"}
	app := newTestApp(stubActivityService{err: failure}, stubProgress{}, "teacher")

	req := httptest.NewRequest(http.MethodPost, "/api/v2/activities/generate", generateBody(t))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	require.Contains(t, string(body), "tests.reject_baselines")
	require.NotContains(t, string(body), "tests too weak", "redacted details stay in the event stream")
}

func TestGetActivityNotFound(t *testing.T) {
	app := newTestApp(stubActivityService{response: dto.ActivityResponse{ID: "other"}}, stubProgress{}, "teacher")

	req := httptest.NewRequest(http.MethodGet, "/api/v2/activities/missing", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestStreamEventsUnknownRun(t *testing.T) {
	app := newTestApp(stubActivityService{}, stubProgress{}, "teacher")

	req := httptest.NewRequest(http.MethodGet, "/api/v2/activities/missing/events", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
