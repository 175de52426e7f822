package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xcro3dile/coderag-go/internal/domain/entities"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFileLoader_ScanOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "notes.txt"), "notes")
	writeFile(t, filepath.Join(dir, "README.md"), "# readme")
	writeFile(t, filepath.Join(dir, "z.py"), "z = 1")
	writeFile(t, filepath.Join(dir, "pkg", "a.py"), "a = 1")
	writeFile(t, filepath.Join(dir, "docs", "guide.MD"), "# guide")
	writeFile(t, filepath.Join(dir, "image.png"), "binary")
	writeFile(t, filepath.Join(dir, ".git", "config.txt"), "hidden")
	writeFile(t, filepath.Join(dir, ".env.py"), "hidden")

	files, err := NewFileLoader().Scan(context.Background(), dir)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"a.py", "z.py", "README.md", "guide.MD", "notes.txt"}, names)
	assert.Equal(t, entities.FileTypePython, files[0].Type)
	assert.Equal(t, entities.FileTypeMarkdown, files[3].Type)
	assert.Equal(t, filepath.Join(dir, "pkg", "a.py"), files[0].Path)
}

func TestFileLoader_ScanMissingRoot(t *testing.T) {
	_, err := NewFileLoader().Scan(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestFileLoader_ScanFileRoot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.py")
	writeFile(t, path, "x")

	_, err := NewFileLoader().Scan(context.Background(), path)
	assert.Error(t, err)
}

func TestFileLoader_Read(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")
	writeFile(t, path, "Hello World\n")

	content, err := NewFileLoader().Read(context.Background(), entities.SourceFile{Path: path, Name: "test.txt"})
	require.NoError(t, err)
	assert.Equal(t, "Hello World\n", content)
}

func TestFileLoader_ReadInvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latin1.txt")
	require.NoError(t, os.WriteFile(path, []byte{0x63, 0x61, 0x66, 0xe9}, 0o644))

	_, err := NewFileLoader().Read(context.Background(), entities.SourceFile{Path: path})
	assert.Error(t, err)
}
