// ABOUTME: Tests for shared utility functions used by CLI commands
// ABOUTME: Verifies truncate, parsing helpers, and validation helpers

package commands

import (
	"testing"

	"github.com/harper/flowscope/internal/models"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"long string truncated", "hello world", 8, "hello..."},
		{"very short maxLen", "hello", 2, "he"},
		{"empty string", "", 10, ""},
		{"unicode truncated with ellipsis", "你好世界你好世界", 5, "你好..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.input, tt.maxLen)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestParseComponent(t *testing.T) {
	v, err := parseComponent("Mach")
	if err != nil || v != models.VariableMach {
		t.Errorf("parseComponent(Mach) = %v, %v", v, err)
	}
	if _, err := parseComponent("T"); err == nil {
		t.Error("parseComponent(T) should fail")
	}
}

func TestParseInterval(t *testing.T) {
	got, err := parseInterval([]float64{1, 2}, "p")
	if err != nil {
		t.Fatalf("parseInterval() error = %v", err)
	}
	if got != [2]float64{1, 2} {
		t.Errorf("parseInterval() = %v, want [1 2]", got)
	}
	if _, err := parseInterval([]float64{1}, "p"); err == nil {
		t.Error("parseInterval with one value should fail")
	}
}

func TestOrDash(t *testing.T) {
	if orDash("  ") != "-" {
		t.Error("blank should render as -")
	}
	if orDash("x") != "x" {
		t.Error("non-blank should be unchanged")
	}
}

func TestContainsString(t *testing.T) {
	tests := []struct {
		slice []string
		item  string
		want  bool
	}{
		{[]string{"a", "b", "c"}, "b", true},
		{[]string{"a", "b", "c"}, "d", false},
		{[]string{}, "a", false},
		{nil, "a", false},
	}

	for _, tt := range tests {
		got := containsString(tt.slice, tt.item)
		if got != tt.want {
			t.Errorf("containsString(%v, %q) = %v, want %v", tt.slice, tt.item, got, tt.want)
		}
	}
}

func TestValidatePositiveInt(t *testing.T) {
	tests := []struct {
		n       int
		wantErr bool
	}{
		{1, false},
		{100, false},
		{0, true},
		{-1, true},
	}

	for _, tt := range tests {
		err := validatePositiveInt(tt.n, "test")
		if (err != nil) != tt.wantErr {
			t.Errorf("validatePositiveInt(%d) error = %v, wantErr %v", tt.n, err, tt.wantErr)
		}
	}
}
