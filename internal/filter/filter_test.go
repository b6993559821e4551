package filter

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name        string
		keywords    []string
		excluded    []string
		text        string
		want        bool
		wantMatched []string
	}{
		{
			name:        "single keyword hit",
			keywords:    []string{"python"},
			text:        "Looking for a Python developer",
			want:        true,
			wantMatched: []string{"python"},
		},
		{
			name:     "no keyword hit",
			keywords: []string{"python"},
			text:     "Looking for a Rust developer",
			want:     false,
		},
		{
			name:        "case insensitive both sides",
			keywords:    []string{"GoLang"},
			text:        "hiring golang engineers",
			want:        true,
			wantMatched: []string{"GoLang"},
		},
		{
			name:        "multiple hits reported in configured order",
			keywords:    []string{"remote", "python"},
			text:        "Python role, fully remote",
			want:        true,
			wantMatched: []string{"remote", "python"},
		},
		{
			name:     "exclusion vetoes a keyword hit",
			keywords: []string{"python", "remote"},
			excluded: []string{"intern"},
			text:     "Python internship, remote",
			want:     false,
		},
		{
			name:     "exclusion is case insensitive",
			keywords: []string{"python"},
			excluded: []string{"Intern"},
			text:     "python INTERN wanted",
			want:     false,
		},
		{
			name: "empty keywords matches everything",
			text: "anything at all",
			want: true,
		},
		{
			name:     "empty keywords still respects exclusions",
			excluded: []string{"spam"},
			text:     "buy spam now",
			want:     false,
		},
		{
			// pass-all holds for every text, the empty string included
			name: "empty text passes when nothing is configured",
			text: "",
			want: true,
		},
		{
			name:     "empty text cannot contain a keyword",
			keywords: []string{"python"},
			text:     "",
			want:     false,
		},
		{
			name:        "substring containment, not word match",
			keywords:    []string{"go"},
			text:        "category theory",
			want:        true,
			wantMatched: []string{"go"},
		},
		{
			name:        "announcement scenario",
			keywords:    []string{"python", "remote"},
			excluded:    []string{"intern"},
			text:        "Senior Python Engineer, remote",
			want:        true,
			wantMatched: []string{"python", "remote"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(tt.keywords, tt.excluded)
			matched, ok := f.Match(tt.text)
			if ok != tt.want {
				t.Fatalf("Match(%q) = %v, want %v", tt.text, ok, tt.want)
			}
			if diff := cmp.Diff(tt.wantMatched, matched); diff != "" {
				t.Errorf("matched keywords mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNewNormalizesTerms(t *testing.T) {
	f := New([]string{" python ", "", "PYTHON", "remote"}, []string{"Intern", "intern", " "})
	if diff := cmp.Diff([]string{"python", "remote"}, f.Keywords()); diff != "" {
		t.Fatalf("keyword normalization mismatch (-want +got):\n%s", diff)
	}
	if f.Matches("we hire interns") {
		t.Fatal("trimmed exclusion term should still veto")
	}
}

func TestMatchesWrapper(t *testing.T) {
	f := New([]string{"go"}, nil)
	if !f.Matches("golang") {
		t.Fatal("Matches should mirror Match")
	}
	if f.Matches("rust") {
		t.Fatal("Matches should mirror Match on misses too")
	}
}

func TestMatchDeterministic(t *testing.T) {
	f := New([]string{"a", "b"}, []string{"x"})
	for i := 0; i < 100; i++ {
		matched, ok := f.Match("a b c")
		if !ok || len(matched) != 2 {
			t.Fatalf("iteration %d: got %v %v", i, matched, ok)
		}
	}
}
