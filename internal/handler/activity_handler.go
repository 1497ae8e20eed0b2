package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/praxis-go-api/internal/dto"
	"github.com/noah-isme/praxis-go-api/internal/generation"
	"github.com/noah-isme/praxis-go-api/internal/middleware"
	"github.com/noah-isme/praxis-go-api/internal/service"
	"github.com/noah-isme/praxis-go-api/internal/utils"
)

// ActivityHandler exposes activity generation, retrieval and live progress.
type ActivityHandler struct {
	service  service.ActivityService
	progress service.ProgressService
	logger   zerolog.Logger
}

// NewActivityHandler builds a new activity handler.
func NewActivityHandler(activityService service.ActivityService, progressService service.ProgressService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service:  activityService,
		progress: progressService,
		logger:   logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register wires the handler routes into the router group.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Post("/generate", middleware.RequireRole("teacher", "admin"), middleware.RateLimit("activity-generate", 3, time.Minute), h.generate)
	router.Get("/:id", h.get)
	router.Get("/:id/events", h.streamEvents)
	router.Get("/:id/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("activity_id", c.Params("id"))
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}, websocket.New(h.handleWS))
}

func (h *ActivityHandler) generate(c *fiber.Ctx) error {
	var payload dto.GenerateActivityRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))

	activity, err := h.service.Generate(ctx, payload)
	if err != nil {
		return h.sendGenerationError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "activity generated", activity)
}

func (h *ActivityHandler) get(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "activity id required")
	}

	activity, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, service.ErrActivityNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "activity not found")
		}
		h.logger.Error().Err(err).Str("activity_id", id).Msg("failed to load activity")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load activity")
	}

	return utils.OK(c, activity, "activity retrieved", nil)
}

func (h *ActivityHandler) streamEvents(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	events, cleanup, err := h.progress.Subscribe(id)
	if err != nil {
		if errors.Is(err, service.ErrRunNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "no generation run for activity")
		}
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to subscribe")
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer func() {
			cleanup()
			cancel()
		}()

		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				if err := writeProgressEvent(w, event); err != nil {
					h.logger.Debug().Err(err).Msg("failed to write progress event")
					return
				}
			case <-ctx.Done():
				return
			}
		}
	})

	return nil
}

func (h *ActivityHandler) handleWS(conn *websocket.Conn) {
	id, _ := conn.Locals("activity_id").(string)
	events, cleanup, err := h.progress.Subscribe(id)
	if err != nil {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "no generation run for activity"))
		_ = conn.Close()
		return
	}
	defer cleanup()
	defer conn.Close()

	h.logger.Info().Str("activity_id", id).Msg("progress websocket connected")

	for event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

func (h *ActivityHandler) sendGenerationError(c *fiber.Ctx, err error) error {
	var failure *generation.SlotFailure
	if errors.As(err, &failure) {
		status := fiber.StatusUnprocessableEntity
		if failure.Kind == generation.FailureFatal {
			status = fiber.StatusBadGateway
		}
		message := fmt.Sprintf("generation failed (%s)", failure.Kind)
		if failure.ObligationID != "" {
			message = fmt.Sprintf("%s: %s", message, failure.ObligationID)
		}
		return utils.SendError(c, status, message)
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make(map[string]string, len(validationErrs))
		for _, fieldErr := range validationErrs {
			details[fieldErr.Field()] = fieldErr.Tag()
		}
		return utils.Fail(c, fiber.StatusBadRequest, "invalid generation request", details)
	}

	h.logger.Error().Err(err).Msg("generation request failed")
	return utils.SendError(c, fiber.StatusInternalServerError, "failed to generate activity")
}

func writeProgressEvent(w *bufio.Writer, event generation.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", event.Seq, event.Type, payload); err != nil {
		return err
	}
	return w.Flush()
}
