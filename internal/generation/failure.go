package generation

import (
	"fmt"
	"strings"
)

// FailureKind classifies why a slot attempt failed. The pipeline's retry
// table dispatches on this tag.
type FailureKind string

// Failure kinds.
const (
	FailureContract  FailureKind = "contract"
	FailureExecution FailureKind = "execution"
	FailureQuality   FailureKind = "quality"
	FailureFatal     FailureKind = "fatal"
)

// Retriable reports whether the kind is eligible for another attempt.
func (k FailureKind) Retriable() bool {
	return k == FailureContract || k == FailureExecution || k == FailureQuality
}

// SlotFailure is the typed error produced when a slot attempt fails. The
// message is redacted: it never carries generated code, only a short reason
// suitable for progress events and the API error surface.
type SlotFailure struct {
	Kind         FailureKind
	SlotIndex    int
	Attempt      int
	ObligationID string

	// JudgeStdout and JudgeStderr hold truncated judge output for
	// execution failures so the repair prompt can include real assertion
	// failures. They are not part of the user-visible message.
	JudgeStdout string
	JudgeStderr string

	// RawText is the raw LLM response behind the failed attempt, kept so the
	// pipeline can enforce the substantive-change rule across retries. Never
	// serialised or surfaced.
	RawText string

	Message string
}

// Error implements the error interface.
func (f *SlotFailure) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "slot %d attempt %d failed (%s)", f.SlotIndex, f.Attempt, f.Kind)
	if f.ObligationID != "" {
		fmt.Fprintf(&b, " [%s]", f.ObligationID)
	}
	if f.Message != "" {
		b.WriteString(": ")
		b.WriteString(f.Message)
	}
	return b.String()
}

func contractFailure(slot, attempt int, obligationID, message string) *SlotFailure {
	return &SlotFailure{Kind: FailureContract, SlotIndex: slot, Attempt: attempt, ObligationID: obligationID, Message: message}
}

func executionFailure(slot, attempt int, message, stdout, stderr string) *SlotFailure {
	return &SlotFailure{Kind: FailureExecution, SlotIndex: slot, Attempt: attempt, Message: message, JudgeStdout: stdout, JudgeStderr: stderr}
}

func qualityFailure(slot, attempt int, obligationID, message string) *SlotFailure {
	return &SlotFailure{Kind: FailureQuality, SlotIndex: slot, Attempt: attempt, ObligationID: obligationID, Message: message}
}

func fatalFailure(slot, attempt int, message string) *SlotFailure {
	return &SlotFailure{Kind: FailureFatal, SlotIndex: slot, Attempt: attempt, Message: message}
}

// truncate bounds judge output snippets carried on failures and into repair
// prompts.
const judgeSnippetBudget = 4096

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "\n... [truncated]"
}
