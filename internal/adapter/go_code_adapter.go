package adapter

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/tools/imports"

	m "sieve.dev/pkg/sieve/internal/model"
)

const goStubPackage = "package sieve\n\n"

// GoCodeAdapter is the CodeAdapter for Go test files, backed by go/parser.
type GoCodeAdapter struct{}

// NewGoCodeAdapter constructs a GoCodeAdapter.
func NewGoCodeAdapter() *GoCodeAdapter {
	return &GoCodeAdapter{}
}

// Language implements CodeAdapter.
func (a *GoCodeAdapter) Language() m.Language {
	return m.LanguageGo
}

// ExtractFunctions returns the Test functions found in response.
func (a *GoCodeAdapter) ExtractFunctions(ctx context.Context, response string) []string {
	var functions []string

	for _, block := range codeBlocks(NormalizeText(response), "go", "golang") {
		if ctx.Err() != nil {
			return functions
		}

		if found, ok := a.functionsFromSource(block); ok {
			functions = append(functions, found...)
			continue
		}

		for _, chunk := range chunkFunctions(block, isGoTestStart, isIndentedOrBlank, isGoClosingBrace) {
			if _, err := a.CheckFunction(ctx, chunk); err == nil {
				functions = append(functions, chunk)
			}
		}
	}

	return functions
}

// functionsFromSource parses block as a whole file. ok is false when the block
// does not parse.
func (a *GoCodeAdapter) functionsFromSource(block string) ([]string, bool) {
	src := block
	if !strings.HasPrefix(strings.TrimSpace(block), "package ") {
		src = goStubPackage + block
	}

	fset := token.NewFileSet()

	file, err := parser.ParseFile(fset, "candidate.go", src, parser.ParseComments)
	if err != nil {
		return nil, false
	}

	var functions []string

	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || !isGoTestFunc(fn) {
			continue
		}

		start := fn.Pos()
		if fn.Doc != nil {
			start = fn.Doc.Pos()
		}

		functions = append(functions, src[fset.Position(start).Offset:fset.Position(fn.End()).Offset])
	}

	return functions, true
}

// CheckFunction implements CodeAdapter.
func (a *GoCodeAdapter) CheckFunction(_ context.Context, code string) (string, error) {
	fn, _, err := a.parseFunction(code, parser.AllErrors)
	if err != nil {
		return "", err
	}

	return fn.Name.Name, nil
}

func (a *GoCodeAdapter) parseFunction(code string, mode parser.Mode) (*ast.FuncDecl, *token.FileSet, error) {
	fset := token.NewFileSet()

	file, err := parser.ParseFile(fset, "candidate.go", goStubPackage+code, mode)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidFunction, err)
	}

	if len(file.Decls) != 1 {
		return nil, nil, fmt.Errorf("%w: expected one declaration, found %d", ErrInvalidFunction, len(file.Decls))
	}

	fn, ok := file.Decls[0].(*ast.FuncDecl)
	if !ok || fn.Body == nil {
		return nil, nil, fmt.Errorf("%w: declaration is not a function", ErrInvalidFunction)
	}

	if !isGoTestFunc(fn) {
		return nil, nil, fmt.Errorf("%w: %s is not a test function", ErrInvalidFunction, fn.Name.Name)
	}

	return fn, fset, nil
}

// Normalize returns the token stream of the function without comments, so
// that re-indentation, line wrapping, trailing commas and comments do not
// change the result.
func (a *GoCodeAdapter) Normalize(_ context.Context, code string) (string, error) {
	fn, fset, err := a.parseFunction(code, parser.SkipObjectResolution)
	if err != nil {
		return "", err
	}

	src := []byte(goStubPackage + code)
	start := fset.Position(fn.Pos()).Offset
	end := fset.Position(fn.End()).Offset
	body := src[start:end]

	scanFset := token.NewFileSet()

	var (
		s      scanner.Scanner
		tokens []string
	)

	s.Init(scanFset.AddFile("", scanFset.Base(), len(body)), body, nil, 0)

	for {
		_, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}

		switch {
		case tok == token.SEMICOLON:
			tokens = append(tokens, ";")
		case tok == token.RBRACE || tok == token.RPAREN || tok == token.RBRACK:
			// "a; }", "a, )" and "a }" differ only by a line break.
			tokens = append(trimTrailing(trimTrailing(tokens, ";"), ","), tok.String())
		case lit != "":
			tokens = append(tokens, lit)
		default:
			tokens = append(tokens, tok.String())
		}
	}

	return strings.Join(trimTrailing(tokens, ";"), " "), nil
}

func trimTrailing(tokens []string, tok string) []string {
	if n := len(tokens); n > 0 && tokens[n-1] == tok {
		return tokens[:n-1]
	}

	return tokens
}

// Merge appends candidate to the test file and fixes its imports.
func (a *GoCodeAdapter) Merge(_ context.Context, testFile m.Path, original []byte, candidate string) ([]byte, error) {
	merged := []byte(strings.TrimRight(string(original), "\n") + "\n\n" + strings.TrimSpace(candidate) + "\n")

	fixed, err := imports.Process(filepath.Base(string(testFile)), merged, &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		// The compiler reports the problem inside the sandbox.
		slog.Debug("Failed to fix imports of merged file", "testFile", testFile, "error", err)
		return merged, nil
	}

	return fixed, nil
}

func isGoTestFunc(fn *ast.FuncDecl) bool {
	if fn.Recv != nil || fn.Type.Params == nil || fn.Type.Params.NumFields() != 1 {
		return false
	}

	return isGoTestName(fn.Name.Name)
}

func isGoTestName(name string) bool {
	if !strings.HasPrefix(name, "Test") || name == "TestMain" {
		return false
	}

	if len(name) == len("Test") {
		return true
	}

	r, _ := utf8.DecodeRuneInString(name[len("Test"):])

	return !unicode.IsLower(r)
}

func isGoTestStart(line string) bool {
	return strings.HasPrefix(line, "func Test")
}

func isGoClosingBrace(line string) bool {
	return strings.TrimRight(line, " \t") == "}"
}

func isIndentedOrBlank(line string) bool {
	return strings.TrimSpace(line) == "" || line[0] == ' ' || line[0] == '\t'
}
