package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileTypeForExt(t *testing.T) {
	cases := map[string]FileType{
		".py":  FileTypePython,
		".md":  FileTypeMarkdown,
		".txt": FileTypeText,
		".PY":  FileTypePython,
	}
	for ext, want := range cases {
		got, ok := FileTypeForExt(ext)
		assert.True(t, ok, ext)
		assert.Equal(t, want, got, ext)
	}
}

func TestFileTypeForExt_Unsupported(t *testing.T) {
	for _, ext := range []string{".go", ".pdf", "", ".markdown"} {
		_, ok := FileTypeForExt(ext)
		assert.False(t, ok, ext)
	}
}

func TestSupportedFileTypes_ScanOrder(t *testing.T) {
	assert.Equal(t, []FileType{FileTypePython, FileTypeMarkdown, FileTypeText}, SupportedFileTypes)
}
