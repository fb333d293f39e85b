package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

type rows [][]string

func (r rows) Table() ([]string, [][]string) { return []string{"ID", "Title"}, r }

type pageLine string

func (p pageLine) String() string { return string(p) }

func TestWrite_JSONEnvelope(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, map[string]any{"data": []int{1, 2}}, "", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	var env map[string]any
	if err := json.Unmarshal(buf.Bytes(), &env); err != nil {
		t.Fatalf("expected JSON, got %q: %v", buf.String(), err)
	}
	if _, ok := env["data"].([]any); !ok {
		t.Fatalf("expected data array, got %#v", env)
	}

	buf.Reset()
	_ = Write(&buf, map[string]any{"data": 1}, "json", true)
	if !strings.Contains(buf.String(), "\n  \"data\": 1") {
		t.Fatalf("expected indented JSON, got %q", buf.String())
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	t.Parallel()

	if err := Write(&bytes.Buffer{}, nil, "edn", false); err == nil {
		t.Fatalf("expected error")
	}
}

func TestWriteTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	env := map[string]any{
		"data": rows{{"1", "Write docs"}, {"2", "Ship"}},
		"meta": pageLine("page 1 of 2"),
	}
	if err := Write(&buf, env, "table", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"ID", "Title", "Write docs", "Ship", "page 1 of 2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestWriteTable_EmptyAndNonTabular(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	_ = WriteTable(&buf, map[string]any{"data": rows{}})
	if strings.TrimSpace(buf.String()) != "(no results)" {
		t.Fatalf("unexpected empty output %q", buf.String())
	}

	buf.Reset()
	_ = WriteTable(&buf, map[string]any{"data": map[string]string{"status": "ok"}})
	if !strings.Contains(buf.String(), `"status": "ok"`) {
		t.Fatalf("expected JSON fallback, got %q", buf.String())
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	if got := Truncate("a\nb   c", 10); got != "a b c" {
		t.Fatalf("expected single line, got %q", got)
	}
	got := Truncate(strings.Repeat("x", 20), 8)
	if !strings.HasSuffix(got, "…") || len([]rune(got)) != 8 {
		t.Fatalf("unexpected truncation %q", got)
	}
	if Truncate("short", 0) != "short" {
		t.Fatalf("width 0 keeps value")
	}
}
