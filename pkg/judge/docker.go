package judge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	judgeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "praxis",
		Subsystem: "judge",
		Name:      "run_duration_seconds",
		Help:      "Duration of judge container runs",
		Buckets:   prometheus.DefBuckets,
	}, []string{"language"})

	judgeTimeouts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "praxis",
		Subsystem: "judge",
		Name:      "run_timeouts_total",
		Help:      "Number of judge runs that hit the timeout",
	}, []string{"language"})

	judgeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "praxis",
		Subsystem: "judge",
		Name:      "run_failures_total",
		Help:      "Number of judge runs that resulted in an error",
	}, []string{"language"})
)

// Config groups judge configuration values.
type Config struct {
	Host          string
	Timeout       time.Duration
	MemoryLimitMB int64
	CPUShares     int64
	WorkspaceRoot string
	Logger        zerolog.Logger
}

// DockerJudge implements Adapter by running candidate code and its test
// suite inside locked-down Docker containers.
type DockerJudge struct {
	client *client.Client
	cfg    Config
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewDockerJudge constructs a Docker backed judge.
func NewDockerJudge(cfg Config) (*DockerJudge, error) {
	opts := []client.Opt{client.WithAPIVersionNegotiation()}
	if cfg.Host != "" {
		opts = append(opts, client.WithHost(cfg.Host))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}

	if cfg.WorkspaceRoot == "" {
		cfg.WorkspaceRoot = os.TempDir()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}

	tracer := otel.Tracer("github.com/noah-isme/praxis-go-api/pkg/judge")

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &DockerJudge{
		client: cli,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// Judge materialises the request in a fresh workspace and runs the
// language's test runner over it.
func (j *DockerJudge) Judge(parent context.Context, req Request) (Result, error) {
	layout, ok := layouts[req.Language]
	if !ok {
		return Result{}, fmt.Errorf("unsupported judge language %q", req.Language)
	}

	ctx, span := j.tracer.Start(parent, "judge.run", trace.WithAttributes(
		attribute.String("judge.language", req.Language),
		attribute.String("judge.kind", string(req.Kind)),
	))
	defer span.End()

	files, err := layout.Place(req)
	if err != nil {
		return Result{}, err
	}

	workspace, err := os.MkdirTemp(j.cfg.WorkspaceRoot, "judge-")
	if err != nil {
		return Result{}, fmt.Errorf("create workspace: %w", err)
	}
	defer os.RemoveAll(workspace)

	for rel, content := range files {
		path := filepath.Join(workspace, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return Result{}, fmt.Errorf("create workspace dir: %w", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			return Result{}, fmt.Errorf("write workspace file: %w", err)
		}
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = j.cfg.Timeout
	}

	result, err := j.runContainer(ctx, span, req.Language, layout, workspace, timeout)
	if err != nil {
		return result, err
	}

	result.PassedTests, result.FailedTests = parseTestLines(result.Stdout)
	result.Success = result.ExitCode == 0 && !result.TimedOut && len(result.FailedTests) == 0
	return result, nil
}

func (j *DockerJudge) runContainer(ctx context.Context, span trace.Span, language string, layout languageLayout, workspace string, timeout time.Duration) (Result, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	hostCfg := &container.HostConfig{
		AutoRemove: false,
		Resources: container.Resources{
			Memory:    j.cfg.MemoryLimitMB * 1024 * 1024,
			CPUShares: j.cfg.CPUShares,
		},
		NetworkMode:    "none",
		ReadonlyRootfs: false,
		Mounts: []mount.Mount{{
			Type:   mount.TypeBind,
			Source: workspace,
			Target: "/workspace",
		}},
	}

	config := &container.Config{
		Image:        layout.Image,
		Cmd:          layout.Command,
		WorkingDir:   "/workspace",
		AttachStdout: true,
		AttachStderr: true,
	}

	start := time.Now()
	result := Result{}

	resp, err := j.client.ContainerCreate(runCtx, config, hostCfg, &network.NetworkingConfig{}, nil, "")
	if err != nil {
		judgeFailures.WithLabelValues(language).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, fmt.Errorf("container create: %w", err)
	}

	containerID := resp.ID
	defer func() {
		removeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := j.client.ContainerRemove(removeCtx, containerID, container.RemoveOptions{Force: true}); err != nil {
			j.logger.Error().Err(err).Str("container_id", containerID).Msg("failed to remove judge container")
		}
	}()

	if err := j.client.ContainerStart(runCtx, containerID, container.StartOptions{}); err != nil {
		judgeFailures.WithLabelValues(language).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, fmt.Errorf("container start: %w", err)
	}

	statusCh, errCh := j.client.ContainerWait(runCtx, containerID, container.WaitConditionNextExit)

	var waitErr error
	select {
	case err := <-errCh:
		waitErr = err
	case status := <-statusCh:
		result.ExitCode = int(status.StatusCode)
	case <-runCtx.Done():
		waitErr = runCtx.Err()
	}

	duration := time.Since(start)
	result.ExecutionTimeMs = duration.Milliseconds()
	judgeDuration.WithLabelValues(language).Observe(duration.Seconds())

	if waitErr != nil {
		if errors.Is(waitErr, context.DeadlineExceeded) || runCtx.Err() == context.DeadlineExceeded {
			result.TimedOut = true
			judgeTimeouts.WithLabelValues(language).Inc()
			killCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := j.client.ContainerKill(killCtx, containerID, "KILL"); err != nil {
				j.logger.Error().Err(err).Str("container_id", containerID).Msg("failed to kill timed out judge container")
			}
			span.RecordError(waitErr)
			span.SetStatus(codes.Error, "judge run timed out")
		} else if !errors.Is(waitErr, context.Canceled) {
			judgeFailures.WithLabelValues(language).Inc()
			span.RecordError(waitErr)
			span.SetStatus(codes.Error, waitErr.Error())
			return result, fmt.Errorf("container wait: %w", waitErr)
		}
	}

	logReader, err := j.client.ContainerLogs(ctx, containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err == nil {
		defer logReader.Close()
		stdout, stderr, err := splitContainerLogs(logReader)
		if err != nil {
			j.logger.Error().Err(err).Str("container_id", containerID).Msg("failed to read judge container logs")
		} else {
			result.Stdout = stdout
			result.Stderr = stderr
		}
	} else {
		j.logger.Error().Err(err).Str("container_id", containerID).Msg("failed to fetch judge container logs")
	}

	if result.TimedOut {
		return result, nil
	}

	if waitErr != nil && errors.Is(waitErr, context.Canceled) {
		return result, waitErr
	}

	return result, nil
}

func splitContainerLogs(reader io.Reader) (string, string, error) {
	var stdoutBuf, stderrBuf bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdoutBuf, &stderrBuf, reader); err != nil {
		return "", "", err
	}
	return stdoutBuf.String(), stderrBuf.String(), nil
}

// Close shuts down the judge's underlying client.
func (j *DockerJudge) Close() error {
	if j.client == nil {
		return nil
	}
	return j.client.Close()
}
