package similarity

import (
	"math"
	"testing"

	"taskforge/internal/task"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScoreIdenticalTasks(t *testing.T) {
	a := task.Task{Title: "Implement Login", Description: "Add auth flow"}
	if got := Score(&a, &a); !almostEqual(got, 1.0) {
		t.Errorf("Score(A,A) = %v, want 1.0", got)
	}
}

func TestScoreSymmetry(t *testing.T) {
	a := task.Task{Title: "Implement Login", Description: "Add authentication"}
	b := task.Task{Title: "Create Login Page", Description: "With validation"}
	if Score(&a, &b) != Score(&b, &a) {
		t.Error("similarity must be symmetric")
	}
}

func TestScoreDisjointVocabularies(t *testing.T) {
	a := task.Task{Title: "Implement Login"}
	b := task.Task{Title: "Database Migration"}
	if got := Score(&a, &b); !almostEqual(got, 0.0) {
		t.Errorf("disjoint vocabularies should score 0, got %v", got)
	}
}

func TestScoreBothEmpty(t *testing.T) {
	a := task.Task{}
	b := task.Task{Title: "a to of"} // all tokens below the length cutoff
	if got := Score(&a, &b); !almostEqual(got, 1.0) {
		t.Errorf("two empty token sets should score 1, got %v", got)
	}
}

func TestScoreOneEmpty(t *testing.T) {
	a := task.Task{}
	b := task.Task{Title: "Implement Login"}
	if got := Score(&a, &b); !almostEqual(got, 0.0) {
		t.Errorf("one empty token set should score 0, got %v", got)
	}
}

// The worked example from the merge pipeline: {implement, login} vs
// {create, login, implementation} overlap only on "login".
func TestScoreWorkedExample(t *testing.T) {
	a := task.Task{Title: "Implement Login"}
	b := task.Task{Title: "Create Login Implementation"}
	if got := Score(&a, &b); !almostEqual(got, 0.25) {
		t.Errorf("expected Jaccard 1/4, got %v", got)
	}
}

func TestTokensSplitOnWhitespaceOnly(t *testing.T) {
	tk := task.Task{Title: "Add OAuth2, SSO!", Description: "to the app fast"}
	tokens := Tokens(&tk)
	if _, ok := tokens["oauth2,"]; !ok {
		t.Error("tokens keep attached punctuation, splitting is whitespace only")
	}
	if _, ok := tokens["oauth2"]; ok {
		t.Error("no punctuation stripping may happen")
	}
	if _, ok := tokens["fast"]; !ok {
		t.Error("expected fast token")
	}
	if _, ok := tokens["to"]; ok {
		t.Error("short tokens must be discarded")
	}
}
