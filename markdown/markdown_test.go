package markdown

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/eringen/multiblog"
)

func render(t *testing.T, md string) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Render(&buf, md); err != nil {
		t.Fatalf("Render(%q) error: %v", md, err)
	}
	return buf.String()
}

func TestRenderInline(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"**bold**", "<strong>bold</strong>"},
		{"_italic_", "<em>italic</em>"},
		{"~~gone~~", "<del>gone</del>"},
		{"text `x := 1` more", "<code>x := 1</code>"},
		{"**bold _italic_ text**", "<strong>bold <em>italic</em> text</strong>"},
	}
	for _, tt := range tests {
		got := render(t, tt.input)
		if !strings.Contains(got, tt.expected) {
			t.Errorf("Render(%q) = %q, want it to contain %q", tt.input, got, tt.expected)
		}
	}
}

func TestRenderCodeBlockWithLanguage(t *testing.T) {
	got := render(t, "```go\nfmt.Println(\"<hi>\")\n```")
	for _, want := range []string{
		`<div class="code-block-wrapper">`,
		`<span class="code-lang code-lang-go">go</span>`,
		`<code class="language-go">`,
		"&lt;hi&gt;",
		"</code></pre></div>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("code block = %q, missing %q", got, want)
		}
	}
}

func TestRenderCodeBlockWithoutLanguage(t *testing.T) {
	got := render(t, "```\ncode here\n```")
	if !strings.Contains(got, `<pre class="code-block"><code>code here`) {
		t.Errorf("code block = %q", got)
	}
	if strings.Contains(got, "code-block-wrapper") {
		t.Errorf("code block without language should have no badge: %q", got)
	}
}

func TestRenderHeadingsHaveIDs(t *testing.T) {
	got := render(t, "# Hello World\n\n## Second")
	if !strings.Contains(got, `<h1 id="hello-world">Hello World</h1>`) {
		t.Errorf("h1 = %q", got)
	}
	if !strings.Contains(got, `<h2 id="second">Second</h2>`) {
		t.Errorf("h2 = %q", got)
	}
}

func TestRenderDropsRawHTMLAndUnsafeLinks(t *testing.T) {
	got := render(t, "<script>alert(1)</script>\n\n[x](javascript:alert(1))")
	if strings.Contains(got, "<script>") {
		t.Errorf("raw HTML rendered: %q", got)
	}
	if strings.Contains(got, "javascript:") {
		t.Errorf("unsafe link rendered: %q", got)
	}
}

func TestRenderTable(t *testing.T) {
	got := render(t, "| a | b |\n|---|---|\n| 1 | 2 |")
	if !strings.Contains(got, "<table>") || !strings.Contains(got, "<td>1</td>") {
		t.Errorf("table = %q", got)
	}
}

func TestFromBlocks(t *testing.T) {
	blocks := []multiblog.Block{
		{Type: TypeHeading1, Text: "Title"},
		{Type: TypeParagraph, Text: "Intro **bold**."},
		{Type: TypeBulleted, Text: "one"},
		{Type: TypeBulleted, Text: "two", Children: []multiblog.Block{
			{Type: TypeBulleted, Text: "nested"},
		}},
		{Type: TypeNumbered, Text: "first"},
		{Type: TypeNumbered, Text: "second"},
		{Type: TypeCode, Language: "go", Text: "x := 1\ny := 2"},
		{Type: TypeDivider},
		{Type: TypeImage, URL: "https://img.example/a b.png", Text: "a [cap]"},
		{Type: TypeQuote, Text: "quoted"},
		{Type: "unsupported", Text: "skipped"},
	}
	want := strings.Join([]string{
		"# Title",
		"",
		"Intro **bold**.",
		"",
		"- one",
		"- two",
		"  - nested",
		"",
		"1. first",
		"2. second",
		"",
		"```go",
		"x := 1",
		"y := 2",
		"```",
		"",
		"---",
		"",
		`![a \[cap\]](<https://img.example/a b.png>)`,
		"",
		"> quoted",
		"",
	}, "\n")
	if got := FromBlocks(blocks); got != want {
		t.Errorf("FromBlocks =\n%s\nwant\n%s", got, want)
	}
}

func TestFromBlocksCodeContainingFence(t *testing.T) {
	got := FromBlocks([]multiblog.Block{{Type: TypeCode, Text: "```\ninner\n```"}})
	if !strings.HasPrefix(got, "~~~~\n") {
		t.Errorf("FromBlocks = %q, want a tilde fence", got)
	}
}

func TestBlocksComponent(t *testing.T) {
	var buf bytes.Buffer
	err := Blocks([]multiblog.Block{
		{Type: TypeHeading2, Text: "Section"},
		{Type: TypeBulleted, Text: "a"},
		{Type: TypeBulleted, Text: "b"},
	}).Render(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	got := buf.String()
	if !strings.Contains(got, `<h2 id="section">Section</h2>`) {
		t.Errorf("heading missing: %q", got)
	}
	if strings.Count(got, "<ul>") != 1 || strings.Count(got, "<li>") != 2 {
		t.Errorf("expected one list with two items: %q", got)
	}
}
