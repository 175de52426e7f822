package parser

import (
	"regexp"
	"strings"

	"github.com/0xcro3dile/coderag-go/internal/domain/entities"
)

var (
	atxHeading = regexp.MustCompile(`(?m)^#{1,6}[ \t]+\S.*$`)
	blankLine  = regexp.MustCompile(`\r?\n[ \t]*\r?\n`)
)

// MarkdownSummarizer lists headings and previews the first paragraph.
type MarkdownSummarizer struct{}

func (MarkdownSummarizer) Summarize(file entities.SourceFile, raw string) (string, error) {
	var sb strings.Builder
	sb.WriteString(header(file.Name))
	sb.WriteString("\n\n")

	if headings := atxHeading.FindAllString(raw, -1); len(headings) > 0 {
		for i := range headings {
			headings[i] = strings.TrimRight(headings[i], " \t\r")
		}
		sb.WriteString("Headers:\n")
		sb.WriteString(strings.Join(headings, "\n"))
		sb.WriteString("\n\n")
	}

	sb.WriteString(preview(firstParagraph(raw)))
	return sb.String(), nil
}

// TextSummarizer previews the start of the file.
type TextSummarizer struct{}

func (TextSummarizer) Summarize(file entities.SourceFile, raw string) (string, error) {
	return header(file.Name) + "\n\n" + preview(raw), nil
}

// firstParagraph returns the text before the first blank line, with CRLF
// line endings folded to LF.
func firstParagraph(raw string) string {
	para := raw
	if loc := blankLine.FindStringIndex(raw); loc != nil {
		para = raw[:loc[0]]
	}
	return strings.ReplaceAll(para, "\r\n", "\n")
}
