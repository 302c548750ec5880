package domain

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"sieve.dev/pkg/sieve/internal/adapter"
	m "sieve.dev/pkg/sieve/internal/model"
)

// Strategy is one prompt framing of the ensemble.
type Strategy struct {
	Name        string
	Description string
	// UsesSource reports whether the prompt shows the source under test.
	UsesSource bool
	System     string
	prompt     *template.Template
}

// NewStrategy parses the prompt template of a strategy. The template receives
// a promptData value.
func NewStrategy(name, description, system, prompt string, usesSource bool) (Strategy, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(prompt)
	if err != nil {
		return Strategy{}, fmt.Errorf("parse prompt of strategy %s: %w", name, err)
	}

	return Strategy{
		Name:        name,
		Description: description,
		UsesSource:  usesSource,
		System:      system,
		prompt:      tmpl,
	}, nil
}

type promptData struct {
	Language   string
	Framework  string
	TestCode   string
	SourceCode string
	HasSource  bool
}

// Render builds the prompt for req.
func (s Strategy) Render(req m.GenerationRequest) (adapter.Prompt, error) {
	data := promptData{
		Language:   languageName(req.Language),
		Framework:  frameworkName(req.Language),
		TestCode:   req.TestCode,
		SourceCode: req.SourceCode,
		HasSource:  s.UsesSource && req.SourceCode != "",
	}

	var buf bytes.Buffer
	if err := s.prompt.Execute(&buf, data); err != nil {
		return adapter.Prompt{}, fmt.Errorf("render prompt of strategy %s: %w", s.Name, err)
	}

	system := s.System
	if system == "" {
		system = defaultSystemPrompt
	}

	return adapter.Prompt{
		System: strings.ReplaceAll(system, "{{framework}}", data.Framework),
		User:   buf.String(),
	}, nil
}

func languageName(lang m.Language) string {
	if lang == m.LanguageGo {
		return "Go"
	}

	return "Python"
}

func frameworkName(lang m.Language) string {
	if lang == m.LanguageGo {
		return "Go testing package"
	}

	return "pytest"
}

const defaultSystemPrompt = "You are an expert software engineer writing {{framework}} tests. " +
	"Reply with complete, self-contained test functions in a single fenced code block. " +
	"Do not repeat the existing tests and do not define helpers outside the test functions."

const testSection = `Existing {{.Language}} test file:
` + "```" + `
{{.TestCode}}
` + "```" + `
`

const sourceSection = `{{if .HasSource}}
Code under test:
` + "```" + `
{{.SourceCode}}
` + "```" + `
{{end}}`

var builtinStrategies = []struct {
	name, description, prompt string
	usesSource                bool
}{
	{
		name:        "extend-coverage",
		description: "Add tests that increase coverage, especially corner cases the existing tests miss.",
		usesSource:  true,
		prompt: testSection + sourceSection + `
Write additional {{.Framework}} test functions that increase the test coverage of the code under test,
especially corner cases missed by the existing tests.`,
	},
	{
		name:        "corner-cases",
		description: "Target corner cases and edge cases missed by the existing suite.",
		usesSource:  true,
		prompt: testSection + sourceSection + `
Write additional {{.Framework}} test functions that specifically target corner cases and edge cases
missed by the existing test suite: empty inputs, boundaries, error paths.`,
	},
	{
		name:        "extend-test",
		description: "Extend the test file with extra cases based only on the tests themselves.",
		prompt: testSection + `
Write additional {{.Framework}} test functions that extend this test file with extra corner cases,
based only on the structure of the existing tests.`,
	},
	{
		name:        "statement-complete",
		description: "Complete the test file as a continuation, statement by statement.",
		usesSource:  true,
		prompt: sourceSection + `
Complete the following {{.Language}} test file by writing the test functions that come next.

` + "```" + `
{{.TestCode}}
` + "```",
	},
}

// DefaultStrategies returns the built-in strategies in their canonical order.
func DefaultStrategies() []Strategy {
	strategies := make([]Strategy, 0, len(builtinStrategies))

	for _, builtin := range builtinStrategies {
		strategy, err := NewStrategy(builtin.name, builtin.description, "", builtin.prompt, builtin.usesSource)
		if err != nil {
			panic(err)
		}

		strategies = append(strategies, strategy)
	}

	return strategies
}

// StrategySet indexes strategies by name while keeping their order.
type StrategySet struct {
	order  []string
	byName map[string]Strategy
}

// NewStrategySet builds a set; later strategies replace earlier ones with the
// same name.
func NewStrategySet(strategies ...Strategy) *StrategySet {
	set := &StrategySet{byName: make(map[string]Strategy, len(strategies))}

	for _, strategy := range strategies {
		if _, exists := set.byName[strategy.Name]; !exists {
			set.order = append(set.order, strategy.Name)
		}

		set.byName[strategy.Name] = strategy
	}

	return set
}

// Get returns the named strategy.
func (s *StrategySet) Get(name string) (Strategy, bool) {
	strategy, ok := s.byName[name]
	return strategy, ok
}

// All returns the strategies in order.
func (s *StrategySet) All() []Strategy {
	out := make([]Strategy, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.byName[name])
	}

	return out
}

// Names returns the strategy names in order.
func (s *StrategySet) Names() []string {
	return append([]string(nil), s.order...)
}

type strategyFile struct {
	Strategies []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		System      string `yaml:"system"`
		Prompt      string `yaml:"prompt"`
		UsesSource  bool   `yaml:"uses_source"`
	} `yaml:"strategies"`
}

// LoadStrategies reads custom strategies from a YAML document:
//
//	strategies:
//	  - name: property-based
//	    prompt: "..."
func LoadStrategies(r io.Reader) ([]Strategy, error) {
	var file strategyFile

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode strategies: %w", err)
	}

	strategies := make([]Strategy, 0, len(file.Strategies))

	for _, entry := range file.Strategies {
		if entry.Name == "" || entry.Prompt == "" {
			return nil, fmt.Errorf("%w: strategy needs a name and a prompt", ErrInvalidArgs)
		}

		strategy, err := NewStrategy(entry.Name, entry.Description, entry.System, entry.Prompt, entry.UsesSource)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidArgs, err)
		}

		strategies = append(strategies, strategy)
	}

	return strategies, nil
}

// BuildRequests expands strategies x temperatures into generation requests.
// Without ensemble only the first strategy at the first temperature is used.
func BuildRequests(target m.Target, strategies []string, temperatures []float64, ensemble bool) []m.GenerationRequest {
	if !ensemble && len(strategies) > 0 && len(temperatures) > 0 {
		strategies = strategies[:1]
		temperatures = temperatures[:1]
	}

	requests := make([]m.GenerationRequest, 0, len(strategies)*len(temperatures))

	for _, strategy := range strategies {
		for _, temperature := range temperatures {
			requests = append(requests, m.GenerationRequest{
				Strategy:    strategy,
				Temperature: temperature,
				Language:    target.Language,
				TestCode:    string(target.TestCode),
				SourceCode:  string(target.SourceCode),
			})
		}
	}

	return requests
}
