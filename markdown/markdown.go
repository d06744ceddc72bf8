// Package markdown renders article bodies to HTML.
//
// Bodies arrive as content blocks; FromBlocks turns them into Markdown, which
// Render converts to HTML with goldmark (GitHub Flavored Markdown, automatic
// heading IDs, raw HTML disabled).
package markdown

import (
	"bytes"
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"

	"github.com/eringen/multiblog"
)

var engine = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		renderer.WithNodeRenderers(util.Prioritized(codeBlockRenderer{}, 100)),
	),
)

// Render writes the HTML representation of md to w.
func Render(w io.Writer, md string) error {
	return engine.Convert([]byte(md), w)
}

// Markdown returns a templ.Component that renders md as HTML.
func Markdown(md string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		if err := Render(&buf, md); err != nil {
			return err
		}
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// Blocks returns a templ.Component that renders content blocks as HTML.
func Blocks(blocks []multiblog.Block) templ.Component {
	return Markdown(FromBlocks(blocks))
}

// codeBlockRenderer writes fenced code with a language badge:
//
//	<div class="code-block-wrapper"><span class="code-lang code-lang-go">go</span>
//	<pre class="code-block"><code class="language-go">...</code></pre></div>
type codeBlockRenderer struct{}

func (codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, renderFencedCode)
}

func renderFencedCode(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)
	lang := util.EscapeHTML(n.Language(source))
	if len(lang) > 0 {
		_, _ = w.WriteString(`<div class="code-block-wrapper"><span class="code-lang code-lang-`)
		_, _ = w.Write(lang)
		_, _ = w.WriteString(`">`)
		_, _ = w.Write(lang)
		_, _ = w.WriteString(`</span><pre class="code-block"><code class="language-`)
		_, _ = w.Write(lang)
		_, _ = w.WriteString(`">`)
	} else {
		_, _ = w.WriteString(`<pre class="code-block"><code>`)
	}
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		_, _ = w.Write(util.EscapeHTML(line.Value(source)))
	}
	_, _ = w.WriteString("</code></pre>")
	if len(lang) > 0 {
		_, _ = w.WriteString("</div>")
	}
	_ = w.WriteByte('\n')
	return ast.WalkSkipChildren, nil
}
