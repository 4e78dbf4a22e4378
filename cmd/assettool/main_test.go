package main

import (
	"testing"

	"github.com/Faultbox/mcassets/internal/index"
)

func TestParseTagKind(t *testing.T) {
	tests := []struct {
		in   string
		want index.TagKind
		ok   bool
	}{
		{"items", index.TagItems, true},
		{"block", index.TagBlocks, true},
		{"fluids", index.TagFluids, true},
		{"recipes", "", false},
	}
	for _, tt := range tests {
		got, err := parseTagKind(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("parseTagKind(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestCompilePattern(t *testing.T) {
	g, err := compilePattern("Block/*_LOG")
	if err != nil {
		t.Fatalf("compilePattern: %v", err)
	}
	if !g.Match("block/oak_log") {
		t.Error("expected case-insensitive match")
	}
	if g.Match("block/stripped/oak_log") {
		t.Error("'*' should not cross '/'")
	}
	if _, err := compilePattern("[unclosed"); err == nil {
		t.Error("expected error for malformed pattern")
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCmd(&app{})
	for _, name := range []string{"info", "list", "search", "resolve", "tags", "render", "export", "watch", "config"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if cmd, _, err := root.Find([]string{"config", "save"}); err != nil || cmd.Name() != "save" {
		t.Error("config save not registered")
	}
	if root.PersistentFlags().Lookup("archive") == nil {
		t.Error("expected config flags on the root command")
	}
}
