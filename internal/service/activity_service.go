package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/praxis-go-api/internal/dto"
	"github.com/noah-isme/praxis-go-api/internal/generation"
	"github.com/noah-isme/praxis-go-api/internal/models"
	"github.com/noah-isme/praxis-go-api/internal/observability"
	"github.com/noah-isme/praxis-go-api/internal/repository"
	"github.com/noah-isme/praxis-go-api/pkg/judge"
	"github.com/noah-isme/praxis-go-api/pkg/llm"
)

// ErrActivityNotFound indicates the requested activity does not exist.
var ErrActivityNotFound = errors.New("activity not found")

// ActivityService exposes practice activity generation and retrieval.
type ActivityService interface {
	Generate(ctx context.Context, payload dto.GenerateActivityRequest) (dto.ActivityResponse, error)
	Get(ctx context.Context, id string) (dto.ActivityResponse, error)
}

// ActivityConfig carries the generation knobs the service forwards to the
// pipeline.
type ActivityConfig struct {
	MaxAttemptsPerSlot  int
	TestCaseCount       int
	SoftFallbackEnabled bool
	TraceTestSuites     bool
}

type activityService struct {
	repo      repository.ActivityRepository
	llm       llm.Client
	judge     judge.Adapter
	progress  ProgressService
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	sanitizer *bluemonday.Policy
	cfg       ActivityConfig
}

// NewActivityService constructs an activity service.
func NewActivityService(repo repository.ActivityRepository, llmClient llm.Client, judgeAdapter judge.Adapter, progress ProgressService, validate *validator.Validate, logger zerolog.Logger, cfg ActivityConfig) ActivityService {
	if cfg.TestCaseCount <= 0 {
		cfg.TestCaseCount = 8
	}

	return &activityService{
		repo:      repo,
		llm:       llmClient,
		judge:     judgeAdapter,
		progress:  progress,
		validator: validate,
		logger:    logger.With().Str("component", "activity_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/praxis-go-api/internal/service/activity"),
		sanitizer: bluemonday.StrictPolicy(),
		cfg:       cfg,
	}
}

func (s *activityService) Generate(ctx context.Context, payload dto.GenerateActivityRequest) (dto.ActivityResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ActivityResponse{}, err
	}

	spec := payload.ToActivitySpec(s.cfg.TestCaseCount)
	activityID := uuid.NewString()

	spanCtx, span := s.tracer.Start(ctx, "activity.generate", trace.WithAttributes(
		attribute.String("activity.id", activityID),
		attribute.String("activity.language", string(spec.Language)),
	))
	defer span.End()

	sink := s.progress.Register(activityID)
	defer s.progress.Release(activityID)

	pipeline := generation.NewPipeline(s.llm, s.judge, sink, generation.Config{
		MaxAttemptsPerSlot:  s.cfg.MaxAttemptsPerSlot,
		SoftFallbackEnabled: s.cfg.SoftFallbackEnabled,
		TraceTestSuites:     s.cfg.TraceTestSuites,
	}, s.logger)

	result, err := pipeline.Run(spanCtx, spec, generation.NewRunContext(activityID))
	if err != nil {
		span.RecordError(err)
		observability.Activities().WithLabelValues(string(spec.Language), "failed").Inc()
		return dto.ActivityResponse{}, err
	}

	activity, err := s.persist(spanCtx, spec, result)
	if err != nil {
		span.RecordError(err)
		return dto.ActivityResponse{}, err
	}

	observability.Activities().WithLabelValues(string(spec.Language), "completed").Inc()
	return s.toResponse(activity), nil
}

func (s *activityService) Get(ctx context.Context, id string) (dto.ActivityResponse, error) {
	activity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ActivityResponse{}, ErrActivityNotFound
		}
		return dto.ActivityResponse{}, err
	}
	return s.toResponse(activity), nil
}

// persist stores the finished activity. Problem descriptions are sanitized
// before storage: they are model output and may carry markup.
func (s *activityService) persist(ctx context.Context, spec generation.ActivitySpec, result *generation.Result) (models.Activity, error) {
	activity := models.Activity{
		ID:           result.ActivityID,
		Language:     string(spec.Language),
		Status:       models.ActivityStatusReady,
		ProblemCount: len(result.Problems),
		Constraints:  spec.Constraints,
	}

	if len(result.Rewrites) > 0 {
		encoded, err := json.Marshal(result.Rewrites)
		if err != nil {
			return models.Activity{}, fmt.Errorf("encode rewrites: %w", err)
		}
		activity.Rewrites = datatypes.JSON(encoded)
	}
	if len(result.SoftFallbacks) > 0 {
		encoded, err := json.Marshal(result.SoftFallbacks)
		if err != nil {
			return models.Activity{}, fmt.Errorf("encode soft fallbacks: %w", err)
		}
		activity.SoftFallbacks = datatypes.JSON(encoded)
	}

	for i, problem := range result.Problems {
		row := models.GeneratedProblem{
			ID:          problem.ID,
			ActivityID:  activity.ID,
			Index:       i,
			Language:    string(problem.Language),
			Title:       problem.Title,
			Description: s.sanitizer.Sanitize(problem.Description),
			StarterCode: problem.StarterCode,
			TestSuite:   problem.TestSuite,
			Constraints: problem.Constraints,
			Difficulty:  string(problem.Difficulty),
			TopicTag:    problem.TopicTag,
		}

		if len(problem.Workspace) > 0 {
			encoded, err := json.Marshal(problem.Workspace)
			if err != nil {
				return models.Activity{}, fmt.Errorf("encode workspace: %w", err)
			}
			row.Workspace = datatypes.JSON(encoded)
		}

		inputs, err := json.Marshal(problem.SampleInputs)
		if err != nil {
			return models.Activity{}, fmt.Errorf("encode sample inputs: %w", err)
		}
		outputs, err := json.Marshal(problem.SampleOutputs)
		if err != nil {
			return models.Activity{}, fmt.Errorf("encode sample outputs: %w", err)
		}
		row.SampleInputs = datatypes.JSON(inputs)
		row.SampleOutputs = datatypes.JSON(outputs)

		activity.Problems = append(activity.Problems, row)
	}

	if err := s.repo.Create(ctx, &activity); err != nil {
		return models.Activity{}, err
	}
	return activity, nil
}

func (s *activityService) toResponse(activity models.Activity) dto.ActivityResponse {
	response := dto.ActivityResponse{
		ID:        activity.ID,
		Language:  activity.Language,
		Status:    activity.Status,
		CreatedAt: activity.CreatedAt,
	}

	for _, problem := range activity.Problems {
		item := dto.GeneratedProblemResponse{
			ID:          problem.ID,
			Index:       problem.Index,
			Language:    problem.Language,
			Title:       problem.Title,
			Description: problem.Description,
			StarterCode: problem.StarterCode,
			TestSuite:   problem.TestSuite,
			Constraints: problem.Constraints,
			Difficulty:  problem.Difficulty,
			TopicTag:    problem.TopicTag,
		}
		if len(problem.Workspace) > 0 {
			_ = json.Unmarshal(problem.Workspace, &item.Workspace)
		}
		_ = json.Unmarshal(problem.SampleInputs, &item.SampleInputs)
		_ = json.Unmarshal(problem.SampleOutputs, &item.SampleOutputs)
		response.Problems = append(response.Problems, item)
	}

	if len(activity.Rewrites) > 0 {
		_ = json.Unmarshal(activity.Rewrites, &response.Rewrites)
	}
	if len(activity.SoftFallbacks) > 0 {
		_ = json.Unmarshal(activity.SoftFallbacks, &response.SoftFallbacks)
	}

	return response
}
