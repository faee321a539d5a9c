package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-intake/pkg/model"
	"github.com/goliatone/go-intake/pkg/rule"
	"github.com/goliatone/go-intake/pkg/scoring"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFlow is returned by Catalog.Flow for undefined flow names.
var ErrUnknownFlow = errors.New("catalog: unknown flow")

// Catalog holds the validated flows and quiz loaded from definition files.
type Catalog struct {
	flows map[string]*model.Registry
	quiz  *scoring.Quiz
}

// Flow returns the registry for name.
func (c *Catalog) Flow(name string) (*model.Registry, error) {
	if c != nil {
		if reg, ok := c.flows[strings.TrimSpace(name)]; ok {
			return reg, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFlow, name)
}

// FlowNames lists the defined flows in lexical order.
func (c *Catalog) FlowNames() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.flows))
	for name := range c.flows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Quiz returns the scoring quiz, or nil when none is defined.
func (c *Catalog) Quiz() *scoring.Quiz {
	if c == nil {
		return nil
	}
	return c.quiz
}

type documentFile struct {
	OptionSets map[string][]string `json:"optionSets" yaml:"optionSets"`
	Quiz       *quizFile           `json:"quiz" yaml:"quiz"`
	Flows      map[string]flowFile `json:"flows" yaml:"flows"`
}

type quizFile struct {
	Ceiling   int            `json:"ceiling" yaml:"ceiling"`
	Questions []questionFile `json:"questions" yaml:"questions"`
}

type questionFile struct {
	ID       string         `json:"id" yaml:"id"`
	Name     string         `json:"name" yaml:"name"`
	Prompt   string         `json:"prompt" yaml:"prompt"`
	Impact   scoring.Impact `json:"impact" yaml:"impact"`
	Tiers    []scoring.Tier `json:"tiers" yaml:"tiers"`
	Positive string         `json:"positive" yaml:"positive"`
	Negative string         `json:"negative" yaml:"negative"`
	FollowUp *followUpFile  `json:"followUp" yaml:"followUp"`
}

type flowFile struct {
	Extends               string     `json:"extends" yaml:"extends"`
	ClearIdentityOnSubmit *bool      `json:"clearIdentityOnSubmit" yaml:"clearIdentityOnSubmit"`
	Steps                 []stepFile `json:"steps" yaml:"steps"`
}

type stepFile struct {
	Key               string         `json:"key" yaml:"key"`
	Question          string         `json:"question" yaml:"question"`
	Kind              string         `json:"kind" yaml:"kind"`
	Label             string         `json:"label" yaml:"label"`
	Help              string         `json:"help" yaml:"help"`
	Required          bool           `json:"required" yaml:"required"`
	Mask              string         `json:"mask" yaml:"mask"`
	Options           []string       `json:"options" yaml:"options"`
	OptionSet         string         `json:"optionSet" yaml:"optionSet"`
	GroupPrefix       string         `json:"groupPrefix" yaml:"groupPrefix"`
	ExplicitSelection bool           `json:"explicitSelection" yaml:"explicitSelection"`
	Max               *int           `json:"max" yaml:"max"`
	FollowUp          *followUpFile  `json:"followUp" yaml:"followUp"`
	ShowWhen          *conditionFile `json:"showWhen" yaml:"showWhen"`
}

type followUpFile struct {
	Key       string    `json:"key" yaml:"key"`
	Kind      string    `json:"kind" yaml:"kind"`
	Label     string    `json:"label" yaml:"label"`
	Prompt    string    `json:"prompt" yaml:"prompt"`
	Mask      string    `json:"mask" yaml:"mask"`
	Options   []string  `json:"options" yaml:"options"`
	OptionSet string    `json:"optionSet" yaml:"optionSet"`
	Required  bool      `json:"required" yaml:"required"`
	When      rule.Spec `json:"when" yaml:"when"`
}

type conditionFile struct {
	Key  string    `json:"key" yaml:"key"`
	When rule.Spec `json:"when" yaml:"when"`
}

type sourced[T any] struct {
	value  T
	source string
}

// LoadFS walks fsys and parses every JSON/YAML definition file. Option sets,
// the quiz and flows may be split across files; names must be unique across
// the whole tree.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	if fsys == nil {
		return nil, errors.New("catalog: filesystem required")
	}

	optionSets := make(map[string][]string)
	flows := make(map[string]sourced[flowFile])
	var quiz *sourced[quizFile]

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("catalog: read %s: %w", path, err)
		}
		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}

		for name, values := range doc.OptionSets {
			name = strings.TrimSpace(name)
			if name == "" {
				return fmt.Errorf("catalog: file %s defines an option set with an empty name", path)
			}
			if _, exists := optionSets[name]; exists {
				return fmt.Errorf("catalog: duplicate option set %q (file %s)", name, path)
			}
			optionSets[name] = append([]string(nil), values...)
		}
		if doc.Quiz != nil {
			if quiz != nil {
				return fmt.Errorf("catalog: quiz defined in both %s and %s", quiz.source, path)
			}
			quiz = &sourced[quizFile]{value: *doc.Quiz, source: path}
		}
		for name, flow := range doc.Flows {
			name = strings.TrimSpace(name)
			if name == "" {
				return fmt.Errorf("catalog: file %s defines a flow with an empty name", path)
			}
			if prev, exists := flows[name]; exists {
				return fmt.Errorf("catalog: duplicate flow %q (files %s, %s)", name, prev.source, path)
			}
			flows[name] = sourced[flowFile]{value: flow, source: path}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	b := &builder{optionSets: optionSets, flows: flows, questions: map[string]scoring.Question{}}
	cat := &Catalog{flows: make(map[string]*model.Registry, len(flows))}

	if quiz != nil {
		q, err := b.buildQuiz(quiz.value, quiz.source)
		if err != nil {
			return nil, err
		}
		cat.quiz = q
	}

	for name := range flows {
		reg, err := b.buildFlow(name)
		if err != nil {
			return nil, err
		}
		cat.flows[name] = reg
	}
	return cat, nil
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("catalog: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	doc = documentFile{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return documentFile{}, fmt.Errorf("catalog: parse %s: %w", source, err)
	}
	return doc, nil
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
