package cli

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/docmark/internal/project"
	"github.com/google/go-cmp/cmp"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func decodeJSON(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, s)
	}
	return v
}

func TestParse_DefaultsToJSONWhenPiped(t *testing.T) {
	out, err := run(t, "# Title\n\nsome *text*\n", "parse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := decodeJSON(t, out)
	want := map[string]any{
		"blocks": []any{
			map[string]any{
				"type":    "heading",
				"level":   float64(1),
				"inlines": []any{map[string]any{"type": "text", "value": "Title"}},
			},
			map[string]any{
				"type": "paragraph",
				"inlines": []any{
					map[string]any{"type": "text", "value": "some "},
					map[string]any{
						"type":     "emphasis",
						"children": []any{map[string]any{"type": "text", "value": "text"}},
					},
				},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parse output mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_InputIsNotTrimmed(t *testing.T) {
	out, err := run(t, "    indented code\n", "parse", "-q", ".blocks[0].type")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != `"code_block"` {
		t.Errorf("expected code_block, got %s", out)
	}
}

func TestParse_FromFileWithText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.md")
	if err := os.WriteFile(path, []byte("Hello **world**\n"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := run(t, "", "parse", path, "--text", "-q", ".text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != `"Hello world"` {
		t.Errorf("expected %q, got %q", `"Hello world"`, out)
	}
}

func TestParse_YAMLOutput(t *testing.T) {
	out, err := run(t, "---\n", "parse", "-o", "yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "type: rule") {
		t.Errorf("expected yaml rule node, got:\n%s", out)
	}
}

func TestParse_SmartPunctuation(t *testing.T) {
	out, err := run(t, "it's\n", "parse", "-q", ".blocks[0].inlines[0].value")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != `"it’s"` {
		t.Errorf("expected curly apostrophe, got %s", out)
	}

	out, err = run(t, "it's\n", "parse", "--no-smart", "-q", ".blocks[0].inlines[0].value")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != `"it's"` {
		t.Errorf("expected straight apostrophe, got %s", out)
	}
}

func TestParse_MaxDepth(t *testing.T) {
	deep := strings.Repeat(">", 10) + " x\n"
	if _, err := run(t, deep, "parse", "--max-depth", "3"); err == nil {
		t.Fatal("expected depth error")
	}
	if _, err := run(t, deep, "parse", "--max-depth", "0"); err != nil {
		t.Errorf("unexpected error with guard disabled: %v", err)
	}
}

func TestFlags_Errors(t *testing.T) {
	if _, err := run(t, "x", "parse", "-o", "xml"); err == nil {
		t.Error("expected error for unknown output format")
	}
	if _, err := run(t, "x", "parse", "-o", "yaml", "-q", "."); err == nil {
		t.Error("expected error for query with yaml output")
	}
	if _, err := run(t, "x", "parse", "-q", ".["); err == nil {
		t.Error("expected error for invalid query")
	}
	if _, err := run(t, "", "parse", filepath.Join(t.TempDir(), "missing.md")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestEvents(t *testing.T) {
	out, err := run(t, "1. [x] $a$\n", "events")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got []eventView
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	one, yes := uint64(1), true
	want := []eventView{
		{Kind: "start", Tag: "list", Ordered: true, Start: &one},
		{Kind: "start", Tag: "item"},
		{Kind: "task_list_marker", Checked: &yes},
		{Kind: "inline_math", Text: "a"},
		{Kind: "end", Tag: "item"},
		{Kind: "end", Tag: "list", Ordered: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestEvents_NoMath(t *testing.T) {
	out, err := run(t, "$a$\n", "events", "--no-math", "-q", "[.[] | select(.kind == \"text\") | .text] | join(\"\")")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != `"$a$"` {
		t.Errorf("expected literal dollars, got %s", out)
	}
}

const legacyYAML = `id: 01HQ0000000000000000000000
format_version: 0.0.0
entries:
  - title: Old
    book_name: Old Book
    url: ""
    keywords: [x]
    text_files: []
    binary_files: []
    memo: "*old* memo"
    created_at: 2020-01-01T00:00:00Z
    last_edit: 2020-01-02T00:00:00Z
`

func TestProjectMigrate(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "old.yaml")
	outPath := filepath.Join(dir, "new.yaml")
	if err := os.WriteFile(in, []byte(legacyYAML), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := run(t, "", "project", "migrate", in, outPath); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, err := project.Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.FormatVersion != project.FormatVersion {
		t.Errorf("expected version %q, got %q", project.FormatVersion, p.FormatVersion)
	}
	if p.Entries[0].Memo != "*old* memo" {
		t.Errorf("expected memo preserved, got %q", p.Entries[0].Memo)
	}

	stdout, err := run(t, legacyYAML, "project", "migrate", "-")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "format_version: "+project.FormatVersion) {
		t.Errorf("expected migrated container on stdout, got:\n%s", stdout)
	}
}

func TestProjectMigrate_RejectsUnknownVersion(t *testing.T) {
	bad := strings.Replace(legacyYAML, "0.0.0", "9.9.9", 1)
	if _, err := run(t, bad, "project", "migrate", "-"); err == nil {
		t.Fatal("expected error for unsupported version")
	}
}

func TestProjectMemos(t *testing.T) {
	out, err := run(t, legacyYAML, "project", "memos", "-q", ".[0].blocks[0].inlines[0].type")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != `"emphasis"` {
		t.Errorf("expected emphasis, got %s", out)
	}
}

func testContainer(t *testing.T) []byte {
	t.Helper()
	var img bytes.Buffer
	if err := png.Encode(&img, image.NewGray(image.Rect(0, 0, 4, 3))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := project.New()
	p.Entries = []project.Entry{{
		Title: "Pics",
		Memo:  "see figure",
		BinaryFiles: []project.BinaryFile{
			{FileType: project.BinaryPNG, FileName: "fig.png", Contents: img.Bytes()},
		},
	}}
	data, err := project.Encode(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return data
}

func TestProjectExtract(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, string(testContainer(t)), "project", "extract", "--dir", dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var atts []project.Attachment
	if err := json.Unmarshal([]byte(out), &atts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(atts) != 1 {
		t.Fatalf("expected 1 attachment, got %d", len(atts))
	}
	if atts[0].Name != "0_fig.png" {
		t.Errorf("expected %q, got %q", "0_fig.png", atts[0].Name)
	}
	if atts[0].Info.Width != 4 || atts[0].Info.Height != 3 {
		t.Errorf("expected 4x3, got %dx%d", atts[0].Info.Width, atts[0].Info.Height)
	}
	if _, err := os.Stat(filepath.Join(dir, "0_fig.png")); err != nil {
		t.Errorf("expected extracted file: %v", err)
	}
}

func TestProjectInfo(t *testing.T) {
	out, err := run(t, string(testContainer(t)), "project", "info", "-q", ".entries[0].attachments[0].info.type")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != `"png"` {
		t.Errorf("expected png, got %s", out)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"json", FormatJSON, true},
		{" YAML ", FormatYAML, true},
		{"", FormatYAML, true},
		{"toml", "", false},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseFormat(%q): unexpected error state: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
