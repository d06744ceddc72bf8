package notion

import (
	"strings"

	"github.com/jomei/notionapi"

	"github.com/eringen/multiblog"
)

// convertBlock maps a Notion block onto a multiblog.Block. Text carries
// inline Markdown, except for code blocks where it is the literal source.
// Unsupported block types are skipped.
func convertBlock(nb notionapi.Block) (multiblog.Block, bool) {
	b := multiblog.Block{ID: string(nb.GetID()), Type: string(nb.GetType())}
	switch v := nb.(type) {
	case *notionapi.ParagraphBlock:
		b.Text = inlineMarkdown(v.Paragraph.RichText)
	case *notionapi.Heading1Block:
		b.Text = inlineMarkdown(v.Heading1.RichText)
	case *notionapi.Heading2Block:
		b.Text = inlineMarkdown(v.Heading2.RichText)
	case *notionapi.Heading3Block:
		b.Text = inlineMarkdown(v.Heading3.RichText)
	case *notionapi.BulletedListItemBlock:
		b.Text = inlineMarkdown(v.BulletedListItem.RichText)
	case *notionapi.NumberedListItemBlock:
		b.Text = inlineMarkdown(v.NumberedListItem.RichText)
	case *notionapi.QuoteBlock:
		b.Text = inlineMarkdown(v.Quote.RichText)
	case *notionapi.CodeBlock:
		b.Text = plainText(v.Code.RichText)
		b.Language = v.Code.Language
	case *notionapi.ImageBlock:
		b.URL = fileURL(v.Image.File, v.Image.External)
		b.Text = plainText(v.Image.Caption)
	case *notionapi.DividerBlock:
	default:
		return multiblog.Block{}, false
	}
	return b, true
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", `*`, `\*`, `_`, `\_`,
	`[`, `\[`, `]`, `\]`, `<`, `\<`, `>`, `\>`, `#`, `\#`,
)

// inlineMarkdown renders rich text runs as inline Markdown, keeping bold,
// italic, strikethrough, code and links.
func inlineMarkdown(rts []notionapi.RichText) string {
	var b strings.Builder
	for _, rt := range rts {
		text := rt.PlainText
		if text == "" {
			continue
		}
		if a := rt.Annotations; a != nil && a.Code {
			text = "`" + strings.ReplaceAll(text, "`", "") + "`"
		} else {
			text = markdownEscaper.Replace(text)
			if a != nil {
				if a.Bold {
					text = "**" + text + "**"
				}
				if a.Italic {
					text = "_" + text + "_"
				}
				if a.Strikethrough {
					text = "~~" + text + "~~"
				}
			}
		}
		if rt.Href != "" {
			text = "[" + text + "](" + rt.Href + ")"
		}
		b.WriteString(text)
	}
	return b.String()
}
