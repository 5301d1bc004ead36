package fingerprint

import (
	"testing"

	"taskforge/internal/task"
)

func TestNormalizeTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Implement Login", "login"},
		{"Create Login Implementation", "login"},
		{"Add User Profile Setup", "user profile"},
		{"Build   API -- Gateway!!", "api gateway"},
		{"Setup", "setup"}, // single token survives stripping
		{"Configure Configuration", "configuration"}, // leading verb strips first
		{"User Dashboard", "user dashboard"},
	}
	for _, tc := range cases {
		if got := NormalizeTitle(tc.in); got != tc.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestGroupKeyMatchesAcrossPhrasings(t *testing.T) {
	a := task.Task{ID: 1, Title: "Implement Login", Screen: task.NewFlexStrings("LoginScreen")}
	b := task.Task{ID: 2, Title: "Create Login Implementation", Screen: task.NewFlexStrings("loginscreen")}
	if GroupKey(&a) != GroupKey(&b) {
		t.Errorf("expected matching group keys, got %q vs %q", GroupKey(&a), GroupKey(&b))
	}
}

func TestGroupKeyDiffersByScreen(t *testing.T) {
	a := task.Task{Title: "Implement Login", Screen: task.NewFlexStrings("LoginScreen")}
	b := task.Task{Title: "Implement Login", Screen: task.NewFlexStrings("SignupScreen")}
	if GroupKey(&a) == GroupKey(&b) {
		t.Error("different screens must not share a group key")
	}
}

func TestHashIsCaseAndWhitespaceInsensitive(t *testing.T) {
	a := task.Task{Title: "Implement Login", Description: "Add auth flow"}
	b := task.Task{Title: "  implement login  ", Description: "ADD AUTH FLOW"}
	if Hash(&a) != Hash(&b) {
		t.Error("hash should ignore case and surrounding whitespace")
	}
}

func TestHashChangesWithAnyField(t *testing.T) {
	base := task.Task{
		Title:              "Implement Login",
		Description:        "Add auth flow",
		Screen:             task.NewFlexStrings("LoginScreen"),
		Component:          task.NewFlexStrings("AuthForm"),
		SourceDocumentType: task.NewFlexStrings("PRD"),
	}
	variants := []task.Task{
		func() task.Task { c := *base.Clone(); c.Title = "Implement Logout"; return c }(),
		func() task.Task { c := *base.Clone(); c.Description = "Remove auth flow"; return c }(),
		func() task.Task { c := *base.Clone(); c.Screen = task.NewFlexStrings("Other"); return c }(),
		func() task.Task { c := *base.Clone(); c.Component = task.NewFlexStrings("Other"); return c }(),
		func() task.Task { c := *base.Clone(); c.SourceDocumentType = task.NewFlexStrings("SDD"); return c }(),
	}

	baseHash := Hash(&base)
	for i := range variants {
		if Hash(&variants[i]) == baseHash {
			t.Errorf("variant %d should change the hash", i)
		}
	}
}

func TestHashIsDeterministic(t *testing.T) {
	tk := task.Task{Title: "Implement Login", Description: "Add auth flow"}
	if Hash(&tk) != Hash(&tk) {
		t.Error("hash must be deterministic")
	}
}
