// Package loader discovers and reads source files from a codebase tree.
package loader

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/0xcro3dile/coderag-go/internal/domain/entities"
)

// FileLoader implements ports.SourceLoader over the local file system.
type FileLoader struct {
	includeHidden bool
}

// NewFileLoader creates a loader that skips hidden files and directories.
func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

// Scan walks root recursively and returns every supported file.
// Files are grouped by type in entities.SupportedFileTypes order,
// and ordered by path within a group.
func (l *FileLoader) Scan(ctx context.Context, root string) ([]entities.SourceFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	byType := make(map[entities.FileType][]entities.SourceFile)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if path != root && !l.includeHidden && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		ft, ok := entities.FileTypeForExt(filepath.Ext(path))
		if !ok {
			return nil
		}
		byType[ft] = append(byType[ft], entities.SourceFile{
			Path: path,
			Name: d.Name(),
			Type: ft,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	var files []entities.SourceFile
	for _, ft := range entities.SupportedFileTypes {
		group := byType[ft]
		sort.Slice(group, func(i, j int) bool { return group[i].Path < group[j].Path })
		files = append(files, group...)
	}
	return files, nil
}

// Read returns the file content. Content that is not valid UTF-8 is rejected.
func (l *FileLoader) Read(ctx context.Context, file entities.SourceFile) (string, error) {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s is not valid UTF-8", file.Path)
	}
	return string(data), nil
}
