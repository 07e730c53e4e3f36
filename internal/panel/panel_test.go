package panel

import (
	"errors"
	"fmt"
	"testing"
)

// testPanel builds the spectrum-explorer shape used across the tests:
// throttled scalar bounds plus an immediate channel selector.
func testPanel(t *testing.T) (*Panel, *Binding, *int) {
	t.Helper()
	p, err := New(
		ScalarParam("freq_min", 0, 100, 0, Throttled),
		ScalarParam("freq_max", 0, 100, 100, Throttled),
		ChoiceParam("channel", []string{"Cz", "Fz"}, "Cz", Immediate),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	calls := 0
	b, err := p.Bind([]string{"freq_min", "freq_max", "channel"}, func(s Snapshot) (any, error) {
		calls++
		return fmt.Sprintf("%s:%g-%g",
			s["channel"].Choice(), s["freq_min"].Scalar(), s["freq_max"].Scalar()), nil
	})
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	return p, b, &calls
}

func TestImmediateSetRecomputesSynchronously(t *testing.T) {
	p, b, calls := testPanel(t)

	if err := p.Set("channel", Choice("Fz")); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if *calls != 1 {
		t.Errorf("expected 1 compute, got %d", *calls)
	}
	res, ok := b.Result()
	if !ok {
		t.Fatal("expected result after immediate set")
	}
	if res != "Fz:0-100" {
		t.Errorf("expected Fz:0-100, got %v", res)
	}
}

func TestImmediateSetUnchangedValueIsNoOp(t *testing.T) {
	p, _, calls := testPanel(t)

	if err := p.Set("channel", Choice("Cz")); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if *calls != 0 {
		t.Errorf("expected no compute for unchanged value, got %d", *calls)
	}
}

func TestThrottledSetDefersUntilCommit(t *testing.T) {
	p, b, calls := testPanel(t)

	if err := p.Set("channel", Choice("Fz")); err != nil {
		t.Fatal(err)
	}
	*calls = 0

	if err := p.Set("freq_min", Scalar(10)); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if *calls != 0 {
		t.Errorf("throttled set triggered %d computes", *calls)
	}
	res, _ := b.Result()
	if res != "Fz:0-100" {
		t.Errorf("result changed before commit: %v", res)
	}
	if !p.Dirty("freq_min") {
		t.Error("expected freq_min to be dirty")
	}

	if err := p.Commit("freq_min"); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if *calls != 1 {
		t.Errorf("expected 1 compute after commit, got %d", *calls)
	}
	res, _ = b.Result()
	if res != "Fz:10-100" {
		t.Errorf("expected Fz:10-100, got %v", res)
	}
}

func TestCommitIdempotence(t *testing.T) {
	p, _, calls := testPanel(t)

	if err := p.Set("freq_min", Scalar(25)); err != nil {
		t.Fatal(err)
	}
	if err := p.Commit("freq_min"); err != nil {
		t.Fatal(err)
	}
	if err := p.Commit("freq_min"); err != nil {
		t.Fatal(err)
	}
	if *calls != 1 {
		t.Errorf("expected 1 compute for repeated commit, got %d", *calls)
	}

	// Re-staging the already committed value is a no-op too.
	if err := p.Set("freq_min", Scalar(25)); err != nil {
		t.Fatal(err)
	}
	if err := p.Commit("freq_min"); err != nil {
		t.Fatal(err)
	}
	if *calls != 1 {
		t.Errorf("expected no compute for equal value, got %d", *calls)
	}
}

func TestCommitBatchRecomputesOnce(t *testing.T) {
	p, b, calls := testPanel(t)

	if err := p.Set("freq_min", Scalar(8)); err != nil {
		t.Fatal(err)
	}
	if err := p.Set("freq_max", Scalar(13)); err != nil {
		t.Fatal(err)
	}
	if err := p.CommitBatch("freq_min", "freq_max"); err != nil {
		t.Fatalf("commit batch failed: %v", err)
	}
	if *calls != 1 {
		t.Errorf("expected 1 compute for batched commit, got %d", *calls)
	}
	res, _ := b.Result()
	if res != "Cz:8-13" {
		t.Errorf("expected Cz:8-13, got %v", res)
	}
}

func TestApplyBatchRecomputesOnce(t *testing.T) {
	p, b, calls := testPanel(t)

	err := p.ApplyBatch(
		Update{Name: "freq_min", Value: Scalar(1)},
		Update{Name: "freq_max", Value: Scalar(45)},
		Update{Name: "channel", Value: Choice("Fz")},
	)
	if err != nil {
		t.Fatalf("apply batch failed: %v", err)
	}
	if *calls != 1 {
		t.Errorf("expected 1 compute, got %d", *calls)
	}
	res, _ := b.Result()
	if res != "Fz:1-45" {
		t.Errorf("expected Fz:1-45, got %v", res)
	}
}

func TestApplyBatchRejectsInvalidValueAtomically(t *testing.T) {
	p, _, calls := testPanel(t)

	err := p.ApplyBatch(
		Update{Name: "freq_min", Value: Scalar(10)},
		Update{Name: "freq_max", Value: Scalar(500)},
	)
	var invalid *InvalidValueError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidValueError, got %v", err)
	}
	if *calls != 0 {
		t.Errorf("rejected batch triggered %d computes", *calls)
	}
	v, _ := p.Get("freq_min")
	if v.Scalar() != 0 {
		t.Errorf("rejected batch mutated freq_min: %v", v)
	}
}

func TestBindUnknownParameter(t *testing.T) {
	p, _, _ := testPanel(t)

	_, err := p.Bind([]string{"freq_min", "bandwidth"}, func(Snapshot) (any, error) {
		return nil, nil
	})
	var unknown *UnknownParameterError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownParameterError, got %v", err)
	}
	if unknown.Name != "bandwidth" {
		t.Errorf("expected bandwidth in error, got %q", unknown.Name)
	}

	// The failed registration must not leave a partial binding behind.
	if err := p.Set("channel", Choice("Fz")); err != nil {
		t.Errorf("set after failed bind: %v", err)
	}
}

func TestSetUnknownParameter(t *testing.T) {
	p, _, _ := testPanel(t)

	var unknown *UnknownParameterError
	if err := p.Set("gain", Scalar(1)); !errors.As(err, &unknown) {
		t.Errorf("expected UnknownParameterError, got %v", err)
	}
	if err := p.Commit("gain"); !errors.As(err, &unknown) {
		t.Errorf("expected UnknownParameterError, got %v", err)
	}
}

func TestInvalidValueLeavesStateUnchanged(t *testing.T) {
	p, b, calls := testPanel(t)

	if err := p.Set("channel", Choice("Fz")); err != nil {
		t.Fatal(err)
	}
	*calls = 0

	err := p.Set("freq_min", Scalar(-5))
	var invalid *InvalidValueError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidValueError, got %v", err)
	}
	if *calls != 0 {
		t.Errorf("invalid set triggered %d computes", *calls)
	}
	v, _ := p.Get("freq_min")
	if v.Scalar() != 0 {
		t.Errorf("committed value changed: %v", v)
	}
	if p.Dirty("freq_min") {
		t.Error("invalid set staged a pending value")
	}
	res, _ := b.Result()
	if res != "Fz:0-100" {
		t.Errorf("result changed: %v", res)
	}
}

func TestComputeFailureKeepsLastResult(t *testing.T) {
	p, err := New(
		ScalarParam("fmax", 0, 250, 45, Throttled),
	)
	if err != nil {
		t.Fatal(err)
	}

	boom := errors.New("fit diverged")
	fail := false
	b, err := p.Bind([]string{"fmax"}, func(s Snapshot) (any, error) {
		if fail {
			return nil, boom
		}
		return s["fmax"].Scalar(), nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := p.Set("fmax", Scalar(30)); err != nil {
		t.Fatal(err)
	}
	if err := p.Commit("fmax"); err != nil {
		t.Fatalf("first commit failed: %v", err)
	}

	fail = true
	if err := p.Set("fmax", Scalar(60)); err != nil {
		t.Fatal(err)
	}
	err = p.Commit("fmax")
	if !errors.Is(err, boom) {
		t.Fatalf("expected compute error, got %v", err)
	}

	res, ok := b.Result()
	if !ok {
		t.Fatal("result cleared by failed compute")
	}
	if res != 30.0 {
		t.Errorf("expected last good result 30, got %v", res)
	}

	// Committed state survives the failure and stays queryable.
	v, err := p.Get("fmax")
	if err != nil {
		t.Fatal(err)
	}
	if v.Scalar() != 60 {
		t.Errorf("expected committed 60, got %v", v)
	}
}

func TestResultBeforeFirstCompute(t *testing.T) {
	p, b, _ := testPanel(t)

	if _, ok := b.Result(); ok {
		t.Error("expected no result before first commit")
	}
	if err := p.Refresh(b); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	res, ok := b.Result()
	if !ok {
		t.Fatal("expected result after refresh")
	}
	if res != "Cz:0-100" {
		t.Errorf("expected Cz:0-100, got %v", res)
	}
}

func TestSnapshotOnlyContainsBindingInputs(t *testing.T) {
	p, err := New(
		ScalarParam("a", 0, 10, 1, Immediate),
		ScalarParam("b", 0, 10, 2, Immediate),
	)
	if err != nil {
		t.Fatal(err)
	}

	_, err = p.Bind([]string{"a"}, func(s Snapshot) (any, error) {
		if len(s) != 1 {
			t.Errorf("snapshot has %d entries, want 1", len(s))
		}
		if _, ok := s["b"]; ok {
			t.Error("snapshot leaked an undeclared input")
		}
		return s["a"].Scalar(), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Set("a", Scalar(5)); err != nil {
		t.Fatal(err)
	}
}

func TestMultipleBindingsShareOneCommit(t *testing.T) {
	p, err := New(
		ScalarParam("fmax", 0, 250, 45, Throttled),
		BoolParam("annotate", false, Immediate),
	)
	if err != nil {
		t.Fatal(err)
	}

	fitCalls, plotCalls := 0, 0
	if _, err := p.Bind([]string{"fmax"}, func(Snapshot) (any, error) {
		fitCalls++
		return nil, nil
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Bind([]string{"fmax", "annotate"}, func(Snapshot) (any, error) {
		plotCalls++
		return nil, nil
	}); err != nil {
		t.Fatal(err)
	}

	if err := p.Set("fmax", Scalar(60)); err != nil {
		t.Fatal(err)
	}
	if err := p.Commit("fmax"); err != nil {
		t.Fatal(err)
	}
	if fitCalls != 1 || plotCalls != 1 {
		t.Errorf("expected 1 compute each, got fit=%d plot=%d", fitCalls, plotCalls)
	}

	// The annotate toggle only reaches the second binding.
	if err := p.Set("annotate", Bool(true)); err != nil {
		t.Fatal(err)
	}
	if fitCalls != 1 || plotCalls != 2 {
		t.Errorf("expected fit=1 plot=2, got fit=%d plot=%d", fitCalls, plotCalls)
	}
}

func TestNewRejectsBadDeclarations(t *testing.T) {
	if _, err := New(
		ScalarParam("dt", 0, 1, 0.01, Throttled),
		ScalarParam("dt", 0, 1, 0.02, Throttled),
	); err == nil {
		t.Error("expected error for duplicate parameter")
	}

	if _, err := New(ScalarParam("dt", 0, 1, 5, Throttled)); err == nil {
		t.Error("expected error for out-of-bounds default")
	}

	if _, err := New(ChoiceParam("mode", []string{"fixed", "knee"}, "bent", Immediate)); err == nil {
		t.Error("expected error for default outside allowed set")
	}
}
