package adapter

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	m "sieve.dev/pkg/sieve/internal/model"
)

const (
	pyFunctionDefinition  = "function_definition"
	pyDecoratedDefinition = "decorated_definition"
	pyComment             = "comment"
	pyBlock               = "block"
)

// Brackets whose last element may carry an optional comma. A one-element
// tuple and a subscript are absent: there the comma changes the value.
var pyOptionalTrailingComma = map[string]bool{
	"argument_list": true,
	"parameters":    true,
	"list":          true,
	"set":           true,
	"dictionary":    true,
}

// PythonCodeAdapter is the CodeAdapter for pytest files, backed by tree-sitter.
// A parser is created per call because sitter.Parser is not safe for
// concurrent use.
type PythonCodeAdapter struct{}

// NewPythonCodeAdapter constructs a PythonCodeAdapter.
func NewPythonCodeAdapter() *PythonCodeAdapter {
	return &PythonCodeAdapter{}
}

// Language implements CodeAdapter.
func (a *PythonCodeAdapter) Language() m.Language {
	return m.LanguagePython
}

func (a *PythonCodeAdapter) parse(ctx context.Context, src []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse: %w", err)
	}

	return tree, nil
}

// ExtractFunctions returns the top level test_* functions found in response.
func (a *PythonCodeAdapter) ExtractFunctions(ctx context.Context, response string) []string {
	var functions []string

	for _, block := range codeBlocks(NormalizeText(response), "python", "py", "python3") {
		block = dedent(block)

		if found, ok := a.functionsFromSource(ctx, block); ok {
			functions = append(functions, found...)
			continue
		}

		for _, chunk := range chunkFunctions(block, isPythonTestStart, isIndentedOrBlank, never) {
			if _, err := a.CheckFunction(ctx, chunk); err == nil {
				functions = append(functions, chunk)
			}
		}
	}

	return functions
}

// functionsFromSource parses block as a module. ok is false when the block
// contains syntax errors.
func (a *PythonCodeAdapter) functionsFromSource(ctx context.Context, block string) ([]string, bool) {
	src := []byte(block)

	tree, err := a.parse(ctx, src)
	if err != nil {
		return nil, false
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, false
	}

	var functions []string

	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		if name, ok := pythonTestName(node, src); ok && name != "" {
			functions = append(functions, strings.TrimRight(node.Content(src), "\n"))
		}
	}

	return functions, true
}

// CheckFunction implements CodeAdapter.
func (a *PythonCodeAdapter) CheckFunction(ctx context.Context, code string) (string, error) {
	src := []byte(dedent(code))

	tree, err := a.parse(ctx, src)
	if err != nil {
		return "", err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return "", fmt.Errorf("%w: %s", ErrInvalidFunction, describePythonError(root, src))
	}

	var definitions []*sitter.Node

	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		if node.Type() == pyComment {
			continue
		}

		definitions = append(definitions, node)
	}

	if len(definitions) != 1 {
		return "", fmt.Errorf("%w: expected one definition, found %d", ErrInvalidFunction, len(definitions))
	}

	name, ok := pythonTestName(definitions[0], src)
	if !ok {
		return "", fmt.Errorf("%w: %s is not a function definition", ErrInvalidFunction, definitions[0].Type())
	}

	if name == "" {
		return "", fmt.Errorf("%w: function name must start with test", ErrInvalidFunction)
	}

	return name, nil
}

// Normalize returns the leaf tokens of the function without comments or
// optional trailing commas. Blocks are wrapped in explicit braces so
// indentation does not matter.
func (a *PythonCodeAdapter) Normalize(ctx context.Context, code string) (string, error) {
	if _, err := a.CheckFunction(ctx, code); err != nil {
		return "", err
	}

	src := []byte(dedent(code))

	tree, err := a.parse(ctx, src)
	if err != nil {
		return "", err
	}
	defer tree.Close()

	var tokens []string

	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node.Type() == pyComment {
			return
		}

		if node.ChildCount() == 0 {
			if text := strings.TrimSpace(node.Content(src)); text != "" {
				tokens = append(tokens, text)
			}

			return
		}

		if node.Type() == pyBlock {
			tokens = append(tokens, "{")
			defer func() { tokens = append(tokens, "}") }()
		}

		for i := 0; i < int(node.ChildCount()); i++ {
			if isPythonTrailingComma(node, i) {
				continue
			}

			walk(node.Child(i))
		}
	}

	walk(tree.RootNode())

	return strings.Join(tokens, " "), nil
}

// isPythonTrailingComma reports whether child i of node is a comma directly
// followed, comments aside, by the closing bracket.
func isPythonTrailingComma(node *sitter.Node, i int) bool {
	if !pyOptionalTrailingComma[node.Type()] || node.Child(i).Type() != "," {
		return false
	}

	for j := i + 1; j < int(node.ChildCount()); j++ {
		switch next := node.Child(j).Type(); next {
		case pyComment:
			continue
		case ")", "]", "}":
			return true
		default:
			return false
		}
	}

	return false
}

// Merge appends candidate as a top level function of the test module.
func (a *PythonCodeAdapter) Merge(_ context.Context, _ m.Path, original []byte, candidate string) ([]byte, error) {
	merged := strings.TrimRight(string(original), "\n") + "\n\n\n" + strings.TrimSpace(dedent(candidate)) + "\n"

	return []byte(merged), nil
}

// pythonTestName returns the function name of a (decorated) definition. ok is
// false for other nodes; name is empty when the function is not a test.
func pythonTestName(node *sitter.Node, src []byte) (string, bool) {
	if node.Type() == pyDecoratedDefinition {
		node = node.ChildByFieldName("definition")
		if node == nil {
			return "", false
		}
	}

	if node.Type() != pyFunctionDefinition {
		return "", false
	}

	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return "", true
	}

	name := nameNode.Content(src)
	if !strings.HasPrefix(name, "test") {
		return "", true
	}

	return name, true
}

func describePythonError(root *sitter.Node, src []byte) string {
	var found *sitter.Node

	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if found != nil {
			return
		}

		if node.IsError() || node.IsMissing() {
			found = node
			return
		}

		for i := 0; i < int(node.ChildCount()); i++ {
			walk(node.Child(i))
		}
	}

	walk(root)

	if found == nil {
		return "syntax error"
	}

	point := found.StartPoint()
	if found.IsMissing() {
		return fmt.Sprintf("line %d: missing %s", point.Row+1, found.Type())
	}

	return fmt.Sprintf("line %d: unexpected %q", point.Row+1, truncate(found.Content(src), 40))
}

func isPythonTestStart(line string) bool {
	return strings.HasPrefix(line, "def test") || strings.HasPrefix(line, "async def test")
}

func never(string) bool {
	return false
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	return s[:limit] + "..."
}
