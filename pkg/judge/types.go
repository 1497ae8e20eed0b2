package judge

import (
	"context"
	"time"
)

// RequestKind distinguishes single-unit submissions from multi-file
// workspaces.
type RequestKind string

// Request kinds.
const (
	KindCode  RequestKind = "code"
	KindFiles RequestKind = "files"
)

// Request describes one candidate (code or file set) to run against a test
// suite.
type Request struct {
	Kind      RequestKind
	Language  string
	Code      string
	Files     map[string]string
	TestSuite string
	// Timeout bounds the container run; zero falls back to the adapter
	// default.
	Timeout time.Duration
}

// Result summarises one judge run. Identical inputs must produce an
// identical pass/fail verdict.
type Result struct {
	Success         bool
	PassedTests     []string
	FailedTests     []string
	Stdout          string
	Stderr          string
	ExecutionTimeMs int64
	ExitCode        int
	TimedOut        bool
}

// Adapter is the opaque sandboxed executor the generation core consumes.
// Implementations must be safe for concurrent use; the pipeline serialises
// calls within a single slot but may overlap slots.
type Adapter interface {
	Judge(ctx context.Context, req Request) (Result, error)
}
