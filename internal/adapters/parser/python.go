package parser

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/0xcro3dile/coderag-go/internal/domain/entities"
)

// PythonSummarizer lists imports, classes with their methods, and
// top-level functions using a Tree-sitter syntax tree.
type PythonSummarizer struct {
	lang *sitter.Language
}

// NewPythonSummarizer creates a Python summarizer.
func NewPythonSummarizer() *PythonSummarizer {
	return &PythonSummarizer{lang: python.GetLanguage()}
}

// Summarize never fails on bad syntax: it returns a degraded summary
// carrying the position of the first syntax error instead.
func (p *PythonSummarizer) Summarize(file entities.SourceFile, raw string) (string, error) {
	content := []byte(raw)

	// sitter.Parser is not safe for concurrent use.
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(p.lang)

	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", file.Name, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return degraded(file.Name, firstSyntaxError(root)), nil
	}

	getText := func(n *sitter.Node) string {
		return string(content[n.StartByte():n.EndByte()])
	}

	elements := []string{header(file.Name)}

	var imports []string
	collectImports(root, func(n *sitter.Node) {
		imports = append(imports, normalizeSpace(getText(n)))
	})
	if len(imports) > 0 {
		elements = append(elements, "Imports:\n"+strings.Join(imports, "\n"))
	}

	for i := 0; i < int(root.NamedChildCount()); i++ {
		def := unwrapDecorated(root.NamedChild(i))
		if def == nil {
			continue
		}
		switch def.Type() {
		case "class_definition":
			elements = append(elements, classBlock(def, getText))
		case "function_definition":
			elements = append(elements, signature(def, getText))
		}
	}

	return strings.Join(elements, "\n\n"), nil
}

func classBlock(class *sitter.Node, getText func(*sitter.Node) string) string {
	lines := []string{"class " + getText(class.ChildByFieldName("name")) + ":"}

	body := class.ChildByFieldName("body")
	if body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			def := unwrapDecorated(body.NamedChild(i))
			if def != nil && def.Type() == "function_definition" {
				lines = append(lines, "    "+signature(def, getText))
			}
		}
	}
	return strings.Join(lines, "\n")
}

// signature renders "def name(params)". Async functions use the same form.
func signature(fn *sitter.Node, getText func(*sitter.Node) string) string {
	params := "()"
	if p := fn.ChildByFieldName("parameters"); p != nil {
		params = normalizeParams(getText(p))
	}
	return "def " + getText(fn.ChildByFieldName("name")) + params
}

// unwrapDecorated returns the definition under any decorators,
// or nil for nodes that are not definitions.
func unwrapDecorated(n *sitter.Node) *sitter.Node {
	switch n.Type() {
	case "class_definition", "function_definition":
		return n
	case "decorated_definition":
		return n.ChildByFieldName("definition")
	}
	return nil
}

// collectImports visits import statements anywhere in the tree, in source order.
func collectImports(n *sitter.Node, visit func(*sitter.Node)) {
	switch n.Type() {
	case "import_statement", "import_from_statement", "future_import_statement":
		visit(n)
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		collectImports(n.NamedChild(i), visit)
	}
}

// firstSyntaxError returns the first ERROR or MISSING node in source order.
func firstSyntaxError(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if !child.HasError() && !child.IsMissing() {
			continue
		}
		if found := firstSyntaxError(child); found != nil {
			return found
		}
	}
	return nil
}

func degraded(name string, errNode *sitter.Node) string {
	reason := "invalid syntax"
	if errNode != nil {
		pos := errNode.StartPoint()
		reason = fmt.Sprintf("syntax error at line %d, column %d", pos.Row+1, pos.Column+1)
	}
	return fmt.Sprintf("File: %s\n\nError parsing file: %s", name, reason)
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// normalizeParams collapses a parameter list onto one line.
func normalizeParams(s string) string {
	s = normalizeSpace(s)
	s = strings.ReplaceAll(s, "( ", "(")
	s = strings.ReplaceAll(s, " )", ")")
	return s
}
