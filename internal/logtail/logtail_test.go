package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeLog(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wreath.log")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}
	return path
}

func TestRead(t *testing.T) {
	var all []string
	for i := 1; i <= 10; i++ {
		all = append(all, fmt.Sprintf("Line %d", i))
	}
	path := writeLog(t, all...)

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{"zero reads nothing", 0, nil},
		{"negative reads nothing", -1, nil},
		{"partial (5)", 5, all[5:]},
		{"exactly all (10)", 10, all},
		{"more than exists (20)", 20, all},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(path, tt.maxLines)
			if err != nil {
				t.Fatalf("Read returned error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Fatalf("Read(%d) = %v, want %v", tt.maxLines, got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "missing.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Read(missing) = %v, %v; want nil, nil", got, err)
	}
}

func TestParse_SlogJSON(t *testing.T) {
	line := `{"time":"2025-05-01T10:00:00.123Z","level":"WARN","msg":"gateway call failed","operation":"list_flowers","code":0,"duration_ms":12,"message":"server unreachable"}`
	e := Parse(line)

	if e.Level != "WARN" || e.Message != "gateway call failed" {
		t.Fatalf("Parse = %+v", e)
	}
	if e.Time.IsZero() {
		t.Fatalf("time not parsed")
	}
	if got := e.Attr("code"); got != "0" {
		t.Fatalf("Attr(code) = %q, want 0", got)
	}
	keys := make([]string, 0, len(e.Attrs))
	for _, a := range e.Attrs {
		keys = append(keys, a.Key)
	}
	if !reflect.DeepEqual(keys, []string{"code", "duration_ms", "message", "operation"}) {
		t.Fatalf("attr keys = %v, want sorted", keys)
	}

	s := e.String()
	if !strings.Contains(s, "WARN gateway call failed code=0 duration_ms=12") ||
		!strings.Contains(s, `message="server unreachable"`) {
		t.Fatalf("String() = %q", s)
	}
}

func TestParse_NonJSONKeepsRaw(t *testing.T) {
	e := Parse("panic: something odd")
	if e.Raw != "panic: something odd" || e.String() != "panic: something odd" {
		t.Fatalf("Parse(non-json) = %+v", e)
	}
}

func TestTail_SkipsBlankLines(t *testing.T) {
	path := writeLog(t,
		`{"level":"INFO","msg":"wreath started"}`,
		"",
		`{"level":"DEBUG","msg":"gateway response","status":200}`,
	)
	entries, err := Tail(path, 10)
	if err != nil {
		t.Fatalf("Tail returned error: %v", err)
	}
	if len(entries) != 2 || entries[1].Attr("status") != "200" {
		t.Fatalf("Tail = %+v", entries)
	}
}
