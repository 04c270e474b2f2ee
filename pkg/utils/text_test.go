package utils

import (
	"testing"
)

func TestTruncate(t *testing.T) {
	if Truncate("hello", 10) != "hello" {
		t.Error("short string unchanged")
	}
	if Truncate("hello world", 5) != "hello..." {
		t.Errorf("got %s", Truncate("hello world", 5))
	}
	if Truncate("x", 0) != "x" {
		t.Error("maxLen 0 returns as-is")
	}
	if got := Truncate("人工智能是工具", 4); got != "人工智能..." {
		t.Errorf("multi-byte truncate: got %s", got)
	}
}

func TestCollapseSpaces(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  a  ", "a"},
		{"a \t\n b", "a b"},
		{"one two", "one two"},
	}
	for _, tt := range tests {
		if got := CollapseSpaces(tt.in); got != tt.want {
			t.Errorf("CollapseSpaces(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
