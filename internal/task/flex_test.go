package task

import (
	"encoding/json"
	"testing"
)

func TestFlexStringsMarshalSingletonAsScalar(t *testing.T) {
	fs := NewFlexStrings("prd-main")
	data, err := json.Marshal(fs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `"prd-main"` {
		t.Errorf("singleton should marshal as scalar, got %s", data)
	}
}

func TestFlexStringsMarshalMultipleAsArray(t *testing.T) {
	fs := NewFlexStrings("prd-main", "ux-login")
	data, err := json.Marshal(fs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `["prd-main","ux-login"]` {
		t.Errorf("multi-value set should marshal as array, got %s", data)
	}
}

func TestFlexStringsMarshalEmptyAsArray(t *testing.T) {
	var fs FlexStrings
	data, err := json.Marshal(fs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `null` && string(data) != `[]` {
		t.Errorf("empty set should marshal as null or empty array, got %s", data)
	}
}

func TestFlexStringsUnmarshal(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  []string
	}{
		{"scalar", `"prd-main"`, []string{"prd-main"}},
		{"array", `["a","b"]`, []string{"a", "b"}},
		{"array with duplicates", `["a","b","a"]`, []string{"a", "b"}},
		{"empty array", `[]`, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var fs FlexStrings
			if err := json.Unmarshal([]byte(tc.input), &fs); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(fs) != len(tc.want) {
				t.Fatalf("got %v, want %v", fs, tc.want)
			}
			for i := range tc.want {
				if fs[i] != tc.want[i] {
					t.Errorf("index %d: got %q, want %q", i, fs[i], tc.want[i])
				}
			}
		})
	}
}

func TestFlexStringsAddDeduplicates(t *testing.T) {
	fs := NewFlexStrings("a")
	fs = fs.Add("a")
	fs = fs.Add("  ")
	fs = fs.Add("b")
	if len(fs) != 2 {
		t.Fatalf("expected 2 values, got %v", fs)
	}
}

func TestFlexStringsUnionPreservesOrder(t *testing.T) {
	a := NewFlexStrings("x", "y")
	b := NewFlexStrings("y", "z")
	u := a.Union(b)
	want := []string{"x", "y", "z"}
	if len(u) != len(want) {
		t.Fatalf("got %v, want %v", u, want)
	}
	for i := range want {
		if u[i] != want[i] {
			t.Errorf("index %d: got %q, want %q", i, u[i], want[i])
		}
	}
}

func TestFlexStringsRoundTripInsideTask(t *testing.T) {
	in := Task{
		ID:                 1,
		Title:              "Implement login",
		SourceDocumentID:   NewFlexStrings("prd-main"),
		SourceDocumentType: NewFlexStrings("PRD", "UX_SPEC"),
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out Task
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.SourceDocumentID.First() != "prd-main" {
		t.Errorf("sourceDocumentId lost in round trip: %v", out.SourceDocumentID)
	}
	if len(out.SourceDocumentType) != 2 {
		t.Errorf("sourceDocumentType lost values: %v", out.SourceDocumentType)
	}
}
