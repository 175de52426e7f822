// Package parser renders source files into compact, searchable summaries.
// There is one ports.Summarizer per entities.FileType.
package parser

import (
	"strings"

	"github.com/0xcro3dile/coderag-go/internal/domain/entities"
	"github.com/0xcro3dile/coderag-go/internal/domain/ports"
)

// previewChars bounds markdown and text previews, counted in runes.
const previewChars = 500

// NewSummarizers returns the summarizer for every supported file type.
func NewSummarizers() map[entities.FileType]ports.Summarizer {
	return map[entities.FileType]ports.Summarizer{
		entities.FileTypePython:   NewPythonSummarizer(),
		entities.FileTypeMarkdown: MarkdownSummarizer{},
		entities.FileTypeText:     TextSummarizer{},
	}
}

// header renders "File: <name>" underlined to its full width.
func header(name string) string {
	return "File: " + name + "\n" + strings.Repeat("=", len(name)+6)
}

func preview(s string) string {
	r := []rune(s)
	if len(r) > previewChars {
		r = r[:previewChars]
	}
	return "Preview:\n" + string(r) + "..."
}
