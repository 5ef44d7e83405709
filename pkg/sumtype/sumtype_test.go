package sumtype

import (
	"bytes"
	"context"
	"testing"

	"github.com/funvibe/anonsum/internal/config"
	"github.com/google/go-cmp/cmp"
)

func TestMain(m *testing.M) {
	config.IsTestMode = true
	m.Run()
}

func codes(diags []Diagnostic) []string {
	var out []string
	for _, d := range diags {
		out = append(out, d.Code)
	}
	return out
}

func TestCheckReportsMissingSlots(t *testing.T) {
	diags := Check(`let v: i32 | String | bool = ::0(1)
let r = match v { ::0(n) => n }`, WithFile("prog.sum"))
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %v, want one S004", diags)
	}
	d := diags[0]
	if d.Code != "S004" || d.File != "prog.sum" || d.Line != 2 || d.Warning {
		t.Errorf("diagnostic = %+v", d)
	}
	if diff := cmp.Diff([]int{1, 2}, d.Missing); diff != "" {
		t.Errorf("Missing mismatch (-want +got):\n%s", diff)
	}
	if !HasErrors(diags) {
		t.Errorf("HasErrors = false")
	}
}

func TestCheckClean(t *testing.T) {
	if diags := Check(`let v: i32 | String = ::1("x")`); diags != nil {
		t.Errorf("diagnostics = %v, want none", diags)
	}
}

func TestOptions(t *testing.T) {
	tests := []struct {
		name string
		src  string
		opts []Option
		want []string
	}{
		{"default slot limit", "type T = i32 | bool | char", nil, nil},
		{"max slots", "type T = i32 | bool | char", []Option{WithMaxSlots(2)}, []string{"S001"}},
		{"degenerate rejected", "type Only = (| i32)", nil, []string{"S006"}},
		{"degenerate allowed", "type Only = (| i32)", []Option{AllowDegenerateSums()}, nil},
		{"ordering off", "derive PartialOrd for i32 | String", nil, []string{"S006"}},
		{"ordering on", "derive PartialOrd for i32 | String", []Option{WithOrdering(OrderingTagThenPayload)}, nil},
		{
			"config document",
			"derive Ord for i32 | String",
			[]Option{WithConfig([]byte("policy:\n  ordering: tag-then-payload\n"))},
			nil,
		},
		{
			"options after config",
			"type T = i32 | bool | char",
			[]Option{WithConfig([]byte("policy:\n  ordering: tag-then-payload\n")), WithMaxSlots(2)},
			[]string{"S001"},
		},
		{"bad config", "type T = i32 | bool", []Option{WithConfig([]byte("policy:\n  ordering: sideways\n"))}, []string{"P001"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, codes(Check(tt.src, tt.opts...))); diff != "" {
				t.Errorf("codes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRun(t *testing.T) {
	var out bytes.Buffer
	diags := Run(`let v: String | i32 = ::1(42)
print v
print match v {
    ::0(s) => s.len(),
    ::1(n) => n,
}`, &out)
	if diags != nil {
		t.Fatalf("diagnostics = %v", diags)
	}
	if diff := cmp.Diff("42\n42\n", out.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRunSkipsProgramsWithErrors(t *testing.T) {
	var out bytes.Buffer
	diags := Run("print 1\nlet x: i32 | i32 = ::2(1)", &out)
	if len(diags) == 0 || diags[0].Code != "S002" {
		t.Errorf("diagnostics = %v, want S002 first", diags)
	}
	if out.Len() != 0 {
		t.Errorf("output = %q, want none", out.String())
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	diags := Run("print 1", nil, WithContext(ctx))
	if diff := cmp.Diff([]string{"R001"}, codes(diags)); diff != "" {
		t.Errorf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{Code: "S005", Warning: true, File: "a.sum", Line: 3, Column: 5, Message: "unreachable", Notes: []string{"covered by arm 1"}}
	want := "a.sum:3:5: warning: [S005] unreachable\n\tcovered by arm 1"
	if got := d.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
