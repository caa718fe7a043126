package compiler

import (
	"strings"
	"testing"
)

// We try to compile several bogus programs.
func TestBogusInput(t *testing.T) {
	tests := []string{
		// missing assignment target
		"let = 1;",

		// unterminated block
		"if x { print(x);",

		// unknown character
		"let x = 1; print($);",
	}

	for _, test := range tests {
		c := New(test)
		_, err := c.Compile()
		if err == nil {
			t.Errorf("expected an error compiling %q, got none", test)
		}
	}
}

// Test some valid programs.
func TestValidPrograms(t *testing.T) {
	tests := []string{
		"let x = 65; print(x);",
		"let mut i = 3; while i != 0 { i = i - 1; print(i); }",
		"if 1 == 1 { print(65); }",
	}

	for _, test := range tests {
		c := New(test)
		out, err := c.Compile()
		if err != nil {
			t.Errorf("unexpected error compiling %q: %v", test, err)
			continue
		}
		if !strings.Contains(out, ".") {
			t.Errorf("expected at least one '.' instruction for %q", test)
		}
	}
}

func TestEmptyProgramCompilesToEmptyOutput(t *testing.T) {
	c := New("")
	out, err := c.Compile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "" {
		t.Errorf("expected empty output for an empty program, got %q", out)
	}
}

func TestMulRejected(t *testing.T) {
	c := New("print(2 * 3);")
	_, err := c.Compile()
	if err == nil {
		t.Fatalf("expected an error for '*'")
	}
}

func TestProgramAvailableAfterCompile(t *testing.T) {
	c := New("let x = 1; print(x);")
	if _, err := c.Compile(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Program()) != 2 {
		t.Fatalf("expected 2 statements recorded, got %d", len(c.Program()))
	}
}
