package generation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/praxis-go-api/internal/obligation"
	"github.com/noah-isme/praxis-go-api/internal/rewrite"
	"github.com/noah-isme/praxis-go-api/internal/scan"
	"github.com/noah-isme/praxis-go-api/pkg/judge"
	"github.com/noah-isme/praxis-go-api/pkg/llm"
)

// Contract-failure ids that are not named obligations.
const (
	contractUnparsableJSON = "draft.unparsable_json"
	contractReferenceStale = "draft.reference_repair_unchanged"
)

// RepairInput carries what the previous attempt learned into the next one.
type RepairInput struct {
	PreviousDraft *GeneratedProblemDraft
	PreviousRaw   string
	ErrorMessage  string
	JudgeStdout   string
	JudgeStderr   string
	Kind          FailureKind
}

// SlotGenerator runs the per-slot state machine: prompt, LLM call, parse,
// normalise, mechanical rewrites, suite validation (with one-shot repair)
// and obligation checks.
type SlotGenerator struct {
	llm    llm.Client
	judge  judge.Adapter
	logger zerolog.Logger
	tracer trace.Tracer
}

// NewSlotGenerator constructs a slot generator.
func NewSlotGenerator(client llm.Client, adapter judge.Adapter, logger zerolog.Logger) *SlotGenerator {
	return &SlotGenerator{
		llm:    client,
		judge:  adapter,
		logger: logger.With().Str("component", "slot_generator").Logger(),
		tracer: otel.Tracer("github.com/noah-isme/praxis-go-api/internal/generation/slot"),
	}
}

// Generate runs one slot attempt. priorHashes holds the sha-256 of every
// earlier attempt's raw text in this slot; a retry reproducing one of them
// is rejected before any further validation. The returned obligation results
// are the evidence for progress events.
func (g *SlotGenerator) Generate(ctx context.Context, slot ProblemSlot, rc RunContext, attempt int, repair *RepairInput, priorHashes map[string]struct{}) (*GeneratedProblemDraft, []obligation.Result, *SlotFailure) {
	ctx, span := g.tracer.Start(ctx, "slot.generate")
	defer span.End()

	if repair != nil && repair.Kind == FailureExecution && repair.PreviousDraft != nil &&
		slot.Language == LanguageJava && repair.PreviousDraft.ReferenceSolution != "" {
		return g.repairReference(ctx, slot, attempt, repair, priorHashes)
	}

	system := draftSystemPrompt(slot)
	user := draftUserPrompt(slot)
	if repair != nil {
		user = repairUserPrompt(slot, repair)
	}

	resp, err := g.llm.Complete(ctx, llm.Request{System: system, User: user})
	if err != nil {
		return nil, nil, fatalFailure(slot.Index, attempt, "llm transport: "+redactError(err))
	}

	raw := resp.Text
	if failure := g.admitRawText(slot, attempt, raw, priorHashes); failure != nil {
		return nil, nil, failure
	}

	payloadJSON, ok := ExtractJSONObject(raw)
	if !ok {
		f := contractFailure(slot.Index, attempt, contractUnparsableJSON, "no JSON object found in model output")
		f.RawText = raw
		return nil, nil, f
	}

	var payload draftPayload
	if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
		f := contractFailure(slot.Index, attempt, contractUnparsableJSON, "model output does not match the draft envelope")
		f.RawText = raw
		return nil, nil, f
	}

	draft, err := normalizeDraft(payload, slot, rc, raw)
	if err != nil {
		v := err.(*obligation.Violation)
		f := contractFailure(slot.Index, attempt, v.ID, v.Message)
		f.RawText = raw
		return nil, nil, f
	}

	if slot.Language == LanguageJava {
		if failure := g.applyJavaRewrites(ctx, draft, slot); failure != nil {
			failure.Attempt = attempt
			failure.RawText = raw
			return nil, nil, failure
		}
	}

	input := obligationInput(draft, slot)
	if violation := obligation.ValidateSuite(input); violation != nil {
		violation = g.repairTestSuite(ctx, draft, slot, violation)
		if violation != nil {
			f := contractFailure(slot.Index, attempt, violation.ID, violation.Message)
			f.RawText = raw
			return nil, nil, f
		}
		input = obligationInput(draft, slot)
	}

	results, violation := obligation.Check(input)
	if violation != nil {
		f := contractFailure(slot.Index, attempt, violation.ID, violation.Message)
		f.RawText = raw
		return draft, results, f
	}

	return draft, results, nil
}

// admitRawText enforces the substantive-change rule: identical raw output to
// a prior attempt is rejected before any validation work.
func (g *SlotGenerator) admitRawText(slot ProblemSlot, attempt int, raw string, priorHashes map[string]struct{}) *SlotFailure {
	hash := HashRawText(raw)
	if _, seen := priorHashes[hash]; seen {
		f := contractFailure(slot.Index, attempt, obligation.RetrySubstantiveChange, "retry reproduced a previous attempt verbatim")
		f.RawText = raw
		return f
	}
	return nil
}

// repairReference is the targeted path for Java execution failures: one LLM
// call rewrites only the reference solution against the existing test suite.
func (g *SlotGenerator) repairReference(ctx context.Context, slot ProblemSlot, attempt int, repair *RepairInput, priorHashes map[string]struct{}) (*GeneratedProblemDraft, []obligation.Result, *SlotFailure) {
	prev := repair.PreviousDraft

	resp, err := g.llm.Complete(ctx, llm.Request{
		System: referenceRepairSystemPrompt(),
		User:   referenceRepairUserPrompt(prev, repair),
	})
	if err != nil {
		return nil, nil, fatalFailure(slot.Index, attempt, "llm transport: "+redactError(err))
	}

	raw := resp.Text
	if failure := g.admitRawText(slot, attempt, raw, priorHashes); failure != nil {
		return nil, nil, failure
	}

	payloadJSON, ok := ExtractJSONObject(raw)
	if !ok {
		f := contractFailure(slot.Index, attempt, contractUnparsableJSON, "no JSON object found in reference repair output")
		f.RawText = raw
		return nil, nil, f
	}

	var payload struct {
		ReferenceSolution string `json:"reference_solution"`
	}
	if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil || strings.TrimSpace(payload.ReferenceSolution) == "" {
		f := contractFailure(slot.Index, attempt, contractUnparsableJSON, "reference repair output has no reference_solution")
		f.RawText = raw
		return nil, nil, f
	}

	if payload.ReferenceSolution == prev.ReferenceSolution {
		f := contractFailure(slot.Index, attempt, contractReferenceStale, "reference repair returned the source unchanged")
		f.RawText = raw
		return nil, nil, f
	}

	repaired := *prev
	repaired.ReferenceSolution = payload.ReferenceSolution
	repaired.rawText = raw

	results, violation := obligation.Check(obligationInput(&repaired, slot))
	if violation != nil {
		f := contractFailure(slot.Index, attempt, violation.ID, violation.Message)
		f.RawText = raw
		return &repaired, results, f
	}
	return &repaired, results, nil
}

// applyJavaRewrites runs the fixed mechanical rewrite order on a Java draft.
// Rewrites run before any validation; obligations then judge the rewritten
// source as-is.
func (g *SlotGenerator) applyJavaRewrites(ctx context.Context, draft *GeneratedProblemDraft, slot ProblemSlot) *SlotFailure {
	keep := ""
	if names := scan.PublicJavaTypeNames(draft.StarterCode); len(names) > 0 {
		keep = names[0]
	}

	if draft.ReferenceSolution != "" {
		if r := rewrite.DemoteExtraPublicTypes(draft.ReferenceSolution, keep); r.Changed {
			draft.ReferenceSolution = r.Source
			draft.record(RewriteDemoteExtraPublicTypes, "reference: "+r.Detail)
		}
	}
	for _, path := range sortedPaths(draft.ReferenceWorkspace) {
		if r := rewrite.DemoteExtraPublicTypes(draft.ReferenceWorkspace[path], ""); r.Changed {
			draft.ReferenceWorkspace[path] = r.Source
			draft.record(RewriteDemoteExtraPublicTypes, path+": "+r.Detail)
		}
	}
	for _, path := range sortedPaths(draft.Workspace) {
		if r := rewrite.DemoteExtraPublicTypes(draft.Workspace[path], ""); r.Changed {
			draft.Workspace[path] = r.Source
			draft.record(RewriteDemoteExtraPublicTypes, path+": "+r.Detail)
		}
	}

	if draft.StarterCode != "" {
		if r := rewrite.DemoteExtraPublicTypes(draft.StarterCode, keep); r.Changed {
			draft.StarterCode = r.Source
			draft.record(RewriteDemoteExtraPublicTypes, "starter: "+r.Detail)
		}
		if r := rewrite.PromotePublicType(draft.StarterCode, javaPrimaryTypeName(draft)); r.Changed {
			draft.StarterCode = r.Source
			draft.record(RewritePromotePublicType, r.Detail)
		}
	}

	target := javaPrimaryTypeName(draft)
	if target != "" {
		wantTest := target + "Test"
		names := scan.PublicJavaTypeNames(draft.TestSuite)
		if len(names) != 1 || names[0] != wantTest {
			if r := rewrite.RenamePublicClass(draft.TestSuite, wantTest); r.Changed {
				draft.TestSuite = r.Source
				draft.record(RewriteRenameTestClass, r.Detail)
			}
		}
	}

	if r := rewrite.SanitizeStringLiteralWhitespace(draft.TestSuite); r.Changed {
		draft.TestSuite = r.Source
		draft.record(RewriteTrimStringWhitespace, r.Detail)
	}

	if _, structural := slot.StructuralTopic(); !structural && scan.JavaReadsStdin(referenceSourceOf(draft)) {
		if err := rebuildJavaStdinSuite(ctx, g.judge, draft, slot); err != nil {
			if failure, ok := err.(*SlotFailure); ok {
				return failure
			}
			return &SlotFailure{Kind: FailureExecution, SlotIndex: slot.Index, Message: redactError(err)}
		}
	}

	return nil
}

// repairTestSuite is the one-shot LLM rewrite allowed when the suite is the
// draft's sole validation failure. The result is re-validated; a second
// failure falls through as a contract failure.
func (g *SlotGenerator) repairTestSuite(ctx context.Context, draft *GeneratedProblemDraft, slot ProblemSlot, violation *obligation.Violation) *obligation.Violation {
	resp, err := g.llm.Complete(ctx, llm.Request{
		System: testSuiteRepairSystemPrompt(slot),
		User:   testSuiteRepairUserPrompt(draft, violation.Message),
	})
	if err != nil {
		g.logger.Warn().Err(err).Int("slot", slot.Index).Msg("test suite repair call failed")
		return violation
	}

	payloadJSON, ok := ExtractJSONObject(resp.Text)
	if !ok {
		return violation
	}
	var payload struct {
		TestSuite flexString `json:"test_suite"`
	}
	if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil || strings.TrimSpace(string(payload.TestSuite)) == "" {
		return violation
	}

	candidate := *draft
	candidate.TestSuite = string(payload.TestSuite)
	if v := obligation.ValidateSuite(obligationInput(&candidate, slot)); v != nil {
		return v
	}

	draft.TestSuite = string(payload.TestSuite)
	draft.record("tests.repaired", "test suite rewritten against the validation contract")
	return nil
}

// obligationInput adapts a draft to the obligation checker's view.
func obligationInput(draft *GeneratedProblemDraft, slot ProblemSlot) obligation.Input {
	topic, _ := slot.StructuralTopic()
	target := ""
	if slot.Language == LanguageJava {
		target = javaPrimaryTypeName(draft)
	}
	return obligation.Input{
		Language:        string(slot.Language),
		Style:           string(slot.ProblemStyle),
		StructuralTopic: topic,
		TargetName:      target,
		StarterCode:     draft.StarterCode,
		Workspace:       draft.Workspace,
		TestSuite:       draft.TestSuite,
		Reference:       draft.ReferenceSolution,
		ReferenceFiles:  draft.ReferenceWorkspace,
		TestCaseCount:   slot.TestCaseCount,
	}
}

func referenceSourceOf(draft *GeneratedProblemDraft) string {
	if draft.ReferenceSolution != "" {
		return draft.ReferenceSolution
	}
	var b strings.Builder
	for _, path := range sortedPaths(draft.ReferenceWorkspace) {
		b.WriteString(draft.ReferenceWorkspace[path])
		b.WriteString("\n")
	}
	return b.String()
}

// HashRawText fingerprints one raw LLM response for the substantive-change
// rule.
func HashRawText(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// redactError strips anything beyond the first line so code snippets in
// wrapped errors never reach progress events.
func redactError(err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return msg
}
