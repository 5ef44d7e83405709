package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/funvibe/anonsum/internal/catalog"
	"github.com/funvibe/anonsum/internal/config"
	"github.com/funvibe/anonsum/internal/diagnostics"
	"github.com/funvibe/anonsum/internal/token"
	"github.com/funvibe/anonsum/internal/typesystem"
	"github.com/google/go-cmp/cmp"
)

func TestMain(m *testing.M) {
	config.IsTestMode = true
	os.Exit(m.Run())
}

// writeFiles creates name/content pairs in a fresh directory and returns
// their paths in argument order.
func writeFiles(t *testing.T, pairs ...string) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for i := 0; i < len(pairs); i += 2 {
		p := filepath.Join(dir, pairs[i])
		if err := os.WriteFile(p, []byte(pairs[i+1]), 0o644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}
	return dir, paths
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

const (
	cleanSrc  = "let a: i32 | String = ::0(1)\n"
	brokenSrc = "let v: i32 | String = ::1(\"x\")\nlet r = match v { ::0(n) => n }\n"
)

func TestCheckFiles(t *testing.T) {
	_, paths := writeFiles(t, "a.sum", cleanSrc, "b.sum", brokenSrc)

	code, _, stderr := runCLI(t, "check", paths[0])
	if code != 0 || stderr != "" {
		t.Errorf("clean file: exit %d, stderr %q", code, stderr)
	}

	code, _, stderr = runCLI(t, append([]string{"check"}, paths...)...)
	if code != 1 {
		t.Errorf("exit = %d, want 1", code)
	}
	if !strings.Contains(stderr, "b.sum:2:") || !strings.Contains(stderr, "[S004]") {
		t.Errorf("stderr = %q", stderr)
	}
	if strings.Contains(stderr, "a.sum") {
		t.Errorf("clean file reported: %q", stderr)
	}
	if strings.Contains(stderr, "\x1b[") {
		t.Errorf("colour written to a buffer: %q", stderr)
	}
}

func TestCheckSharesInterner(t *testing.T) {
	_, paths := writeFiles(t, "a.sum", cleanSrc, "b.sum", "let b: i32 | String = ::1(\"y\")\n")
	code, stdout, stderr := runCLI(t, append([]string{"check", "-dump"}, paths...)...)
	if code != 0 {
		t.Fatalf("exit = %d, stderr %q", code, stderr)
	}
	if n := strings.Count(stdout, "Display:"); n != 1 {
		t.Errorf("dump lists %d descriptors, want 1:\n%s", n, stdout)
	}
	if !strings.Contains(stdout, `"i32 | String"`) {
		t.Errorf("dump = %s", stdout)
	}
}

func TestRunFile(t *testing.T) {
	_, paths := writeFiles(t, "p.sum", "let v: String | i32 = ::1(42)\nprint v\nprint \"done\"\n")
	code, stdout, stderr := runCLI(t, "run", paths[0])
	if code != 0 {
		t.Fatalf("exit = %d, stderr %q", code, stderr)
	}
	if diff := cmp.Diff("42\ndone\n", stdout); diff != "" {
		t.Errorf("stdout mismatch (-want +got):\n%s", diff)
	}

	_, paths = writeFiles(t, "bad.sum", "print 1\n"+brokenSrc)
	code, stdout, _ = runCLI(t, "run", paths[0])
	if code != 1 || stdout != "" {
		t.Errorf("program with errors: exit %d, stdout %q", code, stdout)
	}
}

func TestSettings(t *testing.T) {
	src := "derive PartialOrd for i32 | String\n"
	dir, paths := writeFiles(t, "ord.sum", src)

	code, _, stderr := runCLI(t, "check", paths[0])
	if code != 1 || !strings.Contains(stderr, "[S006]") {
		t.Errorf("default policy: exit %d, stderr %q", code, stderr)
	}

	cfg := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(cfg, []byte("policy:\n  ordering: tag-then-payload\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if code, _, stderr := runCLI(t, "check", "-config", cfg, paths[0]); code != 0 {
		t.Errorf("-config: exit %d, stderr %q", code, stderr)
	}

	// Found next to the file without -config.
	found := filepath.Join(dir, config.SettingsFileName)
	if err := os.WriteFile(found, []byte("policy:\n  ordering: tag-then-payload\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if code, _, stderr := runCLI(t, "check", paths[0]); code != 0 {
		t.Errorf("discovered settings: exit %d, stderr %q", code, stderr)
	}

	if err := os.WriteFile(found, []byte("limits:\n  max_slots: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if code, _, stderr := runCLI(t, "check", paths[0]); code != 1 || !strings.Contains(stderr, "max_slots") {
		t.Errorf("invalid settings: exit %d, stderr %q", code, stderr)
	}
}

func TestCatalogRecording(t *testing.T) {
	_, paths := writeFiles(t, "a.sum", cleanSrc+"derive Debug, Hash for i32 | String\n")
	db := filepath.Join(t.TempDir(), "cat", "sums.db")
	if code, _, stderr := runCLI(t, "check", "-catalog", db, paths[0]); code != 0 {
		t.Fatalf("exit = %d, stderr %q", code, stderr)
	}

	ctx := context.Background()
	cat, err := catalog.Open(ctx, db, typesystem.NewInterner(config.DefaultMaxSlots))
	if err != nil {
		t.Fatal(err)
	}
	defer cat.Close()
	entries, err := cat.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Display != "i32 | String" {
		t.Fatalf("entries = %# v", entries)
	}
	var caps []typesystem.Capability
	for _, d := range entries[0].Derivations {
		caps = append(caps, d.Capability)
	}
	if diff := cmp.Diff([]typesystem.Capability{typesystem.Debug, typesystem.Hash}, caps); diff != "" {
		t.Errorf("derivations mismatch (-want +got):\n%s", diff)
	}
}

func TestUsageErrors(t *testing.T) {
	_, paths := writeFiles(t, "a.sum", cleanSrc, "b.sum", cleanSrc)
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no command", nil, 2},
		{"help", []string{"help"}, 0},
		{"unknown command", []string{"lint", paths[0]}, 2},
		{"no files", []string{"check"}, 2},
		{"run takes one file", []string{"run", paths[0], paths[1]}, 2},
		{"bad colour", []string{"check", "-color", "pink", paths[0]}, 2},
		{"missing file", []string{"check", paths[0], filepath.Join(t.TempDir(), "nope.sum")}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code, _, _ := runCLI(t, tt.args...); code != tt.want {
				t.Errorf("exit = %d, want %d", code, tt.want)
			}
		})
	}
}

func TestColor(t *testing.T) {
	var buf bytes.Buffer
	tests := []struct {
		mode string
		want bool
	}{
		{config.ColorAlways, true},
		{config.ColorNever, false},
		{config.ColorAuto, false},
	}
	for _, tt := range tests {
		if got := useColor(&buf, tt.mode); got != tt.want {
			t.Errorf("useColor(buffer, %s) = %v, want %v", tt.mode, got, tt.want)
		}
	}

	p := newPrinter(&buf, config.ColorAlways)
	p.diagnostic(diagnostics.NewWarning(diagnostics.ErrS005, token.Token{Line: 1, Column: 2}, "unreachable").Note("covered"))
	got := buf.String()
	if !strings.Contains(got, ansiYellow+"warning"+ansiReset) || !strings.Contains(got, "[S005] unreachable") {
		t.Errorf("coloured output = %q", got)
	}
}

func TestCheckDirectory(t *testing.T) {
	dir, _ := writeFiles(t, "a.sum", cleanSrc, "b.sum", brokenSrc, "notes.txt", "not a program")
	code, _, stderr := runCLI(t, "check", dir)
	if code != 1 || !strings.Contains(stderr, "b.sum:2:") {
		t.Errorf("exit %d, stderr %q", code, stderr)
	}
	if strings.Contains(stderr, "notes.txt") {
		t.Errorf("non-source file checked: %q", stderr)
	}
}

func TestSameNamedStructsStayApart(t *testing.T) {
	_, paths := writeFiles(t,
		"a.sum", "struct S derives Debug\nderive Debug for S | i32\n",
		"b.sum", "struct S\nlet x: S | i32 = ::1(1)\n")
	db := filepath.Join(t.TempDir(), "sums.db")
	code, stdout, stderr := runCLI(t, "check", "-dump", "-catalog", db, paths[0], paths[1])
	if code != 0 {
		t.Fatalf("exit = %d, stderr %q", code, stderr)
	}
	if n := strings.Count(stdout, "Display:"); n != 2 {
		t.Errorf("dump lists %d descriptors, want 2:\n%s", n, stdout)
	}

	ctx := context.Background()
	cat, err := catalog.Open(ctx, db, typesystem.NewInterner(config.DefaultMaxSlots))
	if err != nil {
		t.Fatal(err)
	}
	defer cat.Close()
	entries, err := cat.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("catalog has %d entries, want 2", len(entries))
	}
	derived := 0
	for _, e := range entries {
		if e.Display != "S | i32" {
			t.Errorf("display = %q", e.Display)
		}
		derived += len(e.Derivations)
	}
	if derived != 1 {
		t.Errorf("%d derivations recorded, want only the one for a.sum's S", derived)
	}
}
