package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/thoreinstein/relx/internal/logging"
	"github.com/thoreinstein/relx/internal/release"
)

// recorder is a stage that records its invocation and can be programmed to fail.
type recorder struct {
	name   string
	calls  *[]string
	err    error
	mutate func(rc *release.Context)
}

func (s *recorder) Name() string { return s.name }

func (s *recorder) Run(_ context.Context, rc *release.Context) error {
	*s.calls = append(*s.calls, s.name)
	if s.mutate != nil {
		s.mutate(rc)
	}
	return s.err
}

type verifyingRecorder struct {
	recorder
	verifyErr error
}

func (s *verifyingRecorder) Verify(_ context.Context, _ *release.Context) error {
	*s.calls = append(*s.calls, "verify:"+s.name)
	return s.verifyErr
}

type finalizingRecorder struct {
	recorder
	finalizeErr error
}

func (s *finalizingRecorder) Finalize(_ context.Context, _ *release.Context) error {
	*s.calls = append(*s.calls, "finalize:"+s.name)
	return s.finalizeErr
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	return logging.NewContext(t.Context(), logging.ForTest(t))
}

func TestRunner_RunsStagesInOrder(t *testing.T) {
	var calls []string
	r := NewRunner(
		&recorder{name: "a", calls: &calls},
		&recorder{name: "b", calls: &calls},
		&recorder{name: "c", calls: &calls},
	)

	out, err := r.Run(testContext(t), &release.Context{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.Status != Released {
		t.Errorf("Status = %s, want %s", out.Status, Released)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, calls); diff != "" {
		t.Errorf("call order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, out.Completed); diff != "" {
		t.Errorf("completed mismatch (-want +got):\n%s", diff)
	}
}

func TestRunner_StageFailureStopsPipeline(t *testing.T) {
	var calls []string
	boom := errors.New("boom")
	r := NewRunner(
		&recorder{name: "a", calls: &calls},
		&recorder{name: "b", calls: &calls, err: boom, mutate: func(rc *release.Context) {
			rc.NextRelease.Notes = "written by b"
		}},
		&recorder{name: "c", calls: &calls},
	)

	rc := &release.Context{}
	out, err := r.Run(testContext(t), rc)

	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("Run() error = %v, want *StageError", err)
	}
	if stageErr.Stage != "b" || stageErr.Phase != PhaseRun {
		t.Errorf("StageError = %+v, want stage b in run phase", stageErr)
	}
	if !errors.Is(err, boom) {
		t.Error("StageError should unwrap to the stage's error")
	}
	if diff := cmp.Diff([]string{"a", "b"}, calls); diff != "" {
		t.Errorf("c must not run (-want +got):\n%s", diff)
	}
	if out.Status != Failed || out.Stage != "b" {
		t.Errorf("Outcome = %s at %q, want failed at b", out.Status, out.Stage)
	}
	if out.Context.NextRelease.Notes != "written by b" {
		t.Error("mutation by the failing stage should be preserved in the outcome")
	}
}

func TestRunner_NoReleaseEndsSuccessfully(t *testing.T) {
	var calls []string
	r := NewRunner(
		&recorder{name: "analyze", calls: &calls, err: release.ErrNoRelease},
		&recorder{name: "publish", calls: &calls},
	)

	out, err := r.Run(testContext(t), &release.Context{})
	if err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if out.Status != NoRelease || out.Stage != "analyze" {
		t.Errorf("Outcome = %s at %q, want no-release at analyze", out.Status, out.Stage)
	}
	if diff := cmp.Diff([]string{"analyze"}, calls); diff != "" {
		t.Errorf("publish must not run (-want +got):\n%s", diff)
	}
}

func TestRunner_VerifiersRunFirst(t *testing.T) {
	var calls []string
	r := NewRunner(
		&recorder{name: "a", calls: &calls},
		&verifyingRecorder{recorder: recorder{name: "b", calls: &calls}},
	)

	if _, err := r.Run(testContext(t), &release.Context{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if diff := cmp.Diff([]string{"verify:b", "a", "b"}, calls); diff != "" {
		t.Errorf("call order mismatch (-want +got):\n%s", diff)
	}
}

func TestRunner_VerifyFailurePreventsAllStages(t *testing.T) {
	var calls []string
	r := NewRunner(
		&recorder{name: "a", calls: &calls},
		&verifyingRecorder{recorder: recorder{name: "b", calls: &calls}, verifyErr: errors.New("no token")},
	)

	out, err := r.Run(testContext(t), &release.Context{})
	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Phase != PhaseVerify {
		t.Fatalf("Run() error = %v, want verify-phase StageError", err)
	}
	if out.Status != Failed {
		t.Errorf("Status = %s, want failed", out.Status)
	}
	if diff := cmp.Diff([]string{"verify:b"}, calls); diff != "" {
		t.Errorf("no stage should run (-want +got):\n%s", diff)
	}
}

func TestRunner_FinalizersRunAfterAllStages(t *testing.T) {
	var calls []string
	r := NewRunner(
		&finalizingRecorder{recorder: recorder{name: "publish", calls: &calls}},
		&recorder{name: "git", calls: &calls},
	)

	if _, err := r.Run(testContext(t), &release.Context{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if diff := cmp.Diff([]string{"publish", "git", "finalize:publish"}, calls); diff != "" {
		t.Errorf("call order mismatch (-want +got):\n%s", diff)
	}
}

func TestRunner_FinalizersSkippedOnFailure(t *testing.T) {
	var calls []string
	r := NewRunner(
		&finalizingRecorder{recorder: recorder{name: "publish", calls: &calls}},
		&recorder{name: "exec", calls: &calls, err: errors.New("exit 1")},
	)

	if _, err := r.Run(testContext(t), &release.Context{}); err == nil {
		t.Fatal("Run() should fail")
	}
	if diff := cmp.Diff([]string{"publish", "exec"}, calls); diff != "" {
		t.Errorf("finalizer must not run (-want +got):\n%s", diff)
	}
}

func TestRunner_CancelledContext(t *testing.T) {
	var calls []string
	r := NewRunner(&recorder{name: "a", calls: &calls})

	ctx, cancel := context.WithCancel(testContext(t))
	cancel()

	_, err := r.Run(ctx, &release.Context{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if len(calls) != 0 {
		t.Errorf("no stage should run after cancellation, got %v", calls)
	}
}

func TestNewRunner_CopiesStages(t *testing.T) {
	var calls []string
	stages := []Stage{&recorder{name: "a", calls: &calls}, &recorder{name: "b", calls: &calls}}
	r := NewRunner(stages...)
	stages[0] = &recorder{name: "z", calls: &calls}

	if diff := cmp.Diff([]string{"a", "b"}, r.Stages()); diff != "" {
		t.Errorf("stage order changed after construction (-want +got):\n%s", diff)
	}
}
