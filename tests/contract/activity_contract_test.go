package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/praxis-go-api/internal/dto"
	"github.com/noah-isme/praxis-go-api/internal/generation"
	"github.com/noah-isme/praxis-go-api/internal/handler"
	"github.com/noah-isme/praxis-go-api/internal/service"
)

type stubActivityService struct {
	response dto.ActivityResponse
}

func (s stubActivityService) Generate(context.Context, dto.GenerateActivityRequest) (dto.ActivityResponse, error) {
	return s.response, nil
}

func (s stubActivityService) Get(ctx context.Context, id string) (dto.ActivityResponse, error) {
	return s.response, nil
}

type stubProgressService struct{}

func (stubProgressService) Register(string) generation.ProgressSink { return nil }
func (stubProgressService) Release(string) {}
func (stubProgressService) Start(context.Context) {}
func (stubProgressService) Subscribe(string) (<-chan generation.Event, func(), error) {
	return nil, nil, service.ErrRunNotFound
}

func TestActivityResponseContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", "activity.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	response := dto.ActivityResponse{
		ID:       "5f3c1c4e-9a21-4f6b-8a5e-0d9f4c7f9f11",
		Language: "python",
		Status:   "ready",
		Problems: []dto.GeneratedProblemResponse{
			{
				ID:            "7f0b4c1d-2233-4a55-9d66-0b8f1a2c3d4e",
				Index:         0,
				Language:      "python",
				Title:         "Shout it",
				Description:   "Print the uppercased input.",
				StarterCode:   "def solve(text):\n    pass\n",
				TestSuite:     "import pytest\nfrom solution import solve\n",
				Constraints:   "Standard library only.",
				SampleInputs:  []string{"hi"},
				SampleOutputs: []string{"HI"},
				Difficulty:    "easy",
				TopicTag:      "strings",
			},
		},
		Rewrites: []dto.RewriteRecordResponse{
			{ID: "normalize.constraints", Applied: true},
		},
		CreatedAt: time.Now().UTC(),
	}

	svc := stubActivityService{response: response}
	activityHandler := handler.NewActivityHandler(svc, stubProgressService{}, zerolog.Nop())

	app := fiber.New()
	group := app.Group("/api/v2/activities", func(c *fiber.Ctx) error {
		c.Locals("user_role", "teacher")
		return c.Next()
	})
	activityHandler.Register(group)

	req := httptest.NewRequest(http.MethodGet, "/api/v2/activities/5f3c1c4e-9a21-4f6b-8a5e-0d9f4c7f9f11", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}
