package markdown

import (
	"strconv"
	"strings"

	"github.com/eringen/multiblog"
)

// Block types produced by content sources.
const (
	TypeParagraph = "paragraph"
	TypeHeading1  = "heading_1"
	TypeHeading2  = "heading_2"
	TypeHeading3  = "heading_3"
	TypeBulleted  = "bulleted_list_item"
	TypeNumbered  = "numbered_list_item"
	TypeQuote     = "quote"
	TypeCode      = "code"
	TypeImage     = "image"
	TypeDivider   = "divider"
)

var captionEscaper = strings.NewReplacer(`\`, `\\`, `[`, `\[`, `]`, `\]`)

// FromBlocks converts content blocks to Markdown. Block text is already
// inline Markdown, except for code blocks which are emitted verbatim inside a
// fence. Unknown block types are skipped.
func FromBlocks(blocks []multiblog.Block) string {
	var b strings.Builder
	writeBlocks(&b, blocks, "")
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func writeBlocks(b *strings.Builder, blocks []multiblog.Block, indent string) {
	number := 0
	for i, blk := range blocks {
		if blk.Type == TypeNumbered {
			number++
		} else {
			number = 0
		}
		listItem := blk.Type == TypeBulleted || blk.Type == TypeNumbered
		// Consecutive list items form one list; everything else is
		// separated by a blank line.
		if i > 0 && !(listItem && blocks[i-1].Type == blk.Type) {
			b.WriteString("\n")
		}
		switch blk.Type {
		case TypeParagraph:
			writeLine(b, indent, blk.Text)
		case TypeHeading1:
			writeLine(b, indent, "# "+blk.Text)
		case TypeHeading2:
			writeLine(b, indent, "## "+blk.Text)
		case TypeHeading3:
			writeLine(b, indent, "### "+blk.Text)
		case TypeBulleted:
			writeLine(b, indent, "- "+blk.Text)
			writeBlocks(b, blk.Children, indent+"  ")
			continue
		case TypeNumbered:
			marker := strconv.Itoa(number) + ". "
			writeLine(b, indent, marker+blk.Text)
			writeBlocks(b, blk.Children, indent+strings.Repeat(" ", len(marker)))
			continue
		case TypeQuote:
			writeLine(b, indent, "> "+blk.Text)
		case TypeCode:
			fence := "```"
			if strings.Contains(blk.Text, "```") {
				fence = "~~~~"
			}
			writeLine(b, indent, fence+blk.Language)
			for _, line := range strings.Split(blk.Text, "\n") {
				writeLine(b, indent, line)
			}
			writeLine(b, indent, fence)
		case TypeImage:
			if blk.URL == "" {
				continue
			}
			writeLine(b, indent, "!["+captionEscaper.Replace(blk.Text)+"](<"+blk.URL+">)")
		case TypeDivider:
			writeLine(b, indent, "---")
		default:
			continue
		}
		if len(blk.Children) > 0 {
			b.WriteString("\n")
			writeBlocks(b, blk.Children, indent+"  ")
		}
	}
}

func writeLine(b *strings.Builder, indent, line string) {
	if line == "" {
		b.WriteString("\n")
		return
	}
	b.WriteString(indent)
	b.WriteString(line)
	b.WriteString("\n")
}
