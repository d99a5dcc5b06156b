package eval

import "testing"

func TestOverlapRecallIdentical(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog"
	if got := OverlapRecall(text, text, 2); got != 1.0 {
		t.Errorf("identical texts score %f, want 1.0", got)
	}
}

func TestOverlapRecallDisjoint(t *testing.T) {
	if got := OverlapRecall("alpha beta gamma", "one two three", 2); got != 0.0 {
		t.Errorf("disjoint texts score %f, want 0.0", got)
	}
}

func TestOverlapRecallDeterministic(t *testing.T) {
	cand := "PatchTST is a patch-based transformer model for long sequences"
	ref := "PatchTST is a patch-based transformer strong on long sequences"

	first := OverlapRecall(cand, ref, 2)
	second := OverlapRecall(cand, ref, 2)
	if first != second {
		t.Errorf("scores differ across runs: %f vs %f", first, second)
	}
	if first <= 0 || first >= 1 {
		t.Errorf("partial overlap should land strictly inside (0,1), got %f", first)
	}
}

func TestOverlapRecallCaseInsensitive(t *testing.T) {
	if got := OverlapRecall("Hello World", "hello world", 2); got != 1.0 {
		t.Errorf("case difference changed the score: %f", got)
	}
}

func TestOverlapRecallEmptyInputs(t *testing.T) {
	if got := OverlapRecall("", "reference text here", 2); got != 0.0 {
		t.Errorf("empty candidate scored %f", got)
	}
	if got := OverlapRecall("candidate", "", 2); got != 0.0 {
		t.Errorf("empty reference scored %f", got)
	}
}
