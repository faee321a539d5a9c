// Package report renders plain-text summaries of a scored quiz and of an
// application under review.
package report

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-intake/pkg/address"
	"github.com/goliatone/go-intake/pkg/model"
	"github.com/goliatone/go-intake/pkg/scoring"
)

//go:embed templates/*.tpl
var templateFS embed.FS

// Option configures a Renderer.
type Option func(*config)

type config struct {
	templates fs.FS
	baseDir   string
}

// WithFS loads templates from files instead of the embedded set. Templates
// missing from files are an error; there is no fallback.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithBaseDir loads templates from a directory on disk.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// Renderer executes the score and review templates.
type Renderer struct {
	mu        sync.Mutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
}

// New builds a Renderer over the embedded templates unless an option
// supplies another source.
func New(options ...Option) (*Renderer, error) {
	cfg := &config{}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}

	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("report: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	if cfg.templates != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.templates))
	}
	if len(loaders) == 0 {
		sub, err := fs.Sub(templateFS, "templates")
		if err != nil {
			return nil, fmt.Errorf("report: embedded templates: %w", err)
		}
		loaders = append(loaders, pongo2.NewFSLoader(sub))
	}

	registerFilters()
	return &Renderer{
		set:       pongo2.NewSet("intake-report", loaders...),
		templates: make(map[string]*pongo2.Template),
	}, nil
}

// Score renders a fundability result.
func (r *Renderer) Score(result scoring.Result) (string, error) {
	return r.render("score.tpl", scoreContext(result))
}

// WriteScore renders a fundability result to w.
func (r *Renderer) WriteScore(w io.Writer, result scoring.Result) error {
	return r.write(w, "score.tpl", scoreContext(result))
}

func scoreContext(result scoring.Result) pongo2.Context {
	factors := make([]map[string]any, 0, len(result.Factors))
	for _, f := range result.Factors {
		factors = append(factors, map[string]any{
			"id":          f.ID,
			"name":        f.Name,
			"answer":      f.Answer,
			"points":      f.Points,
			"status":      string(f.Status),
			"description": f.Description,
		})
	}
	return pongo2.Context{
		"score":      result.Score,
		"maxScore":   result.MaxScore,
		"percentage": result.Percentage,
		"rating":     result.Rating,
		"factors":    factors,
	}
}

// Review renders the visible answers of state in registry order. Address
// groups are shown composed; follow-ups appear only when triggered.
func (r *Renderer) Review(reg *model.Registry, state model.FormState, submitted bool) (string, error) {
	ctx, err := reviewContext(reg, state, submitted)
	if err != nil {
		return "", err
	}
	return r.render("review.tpl", ctx)
}

// WriteReview renders the review of state to w.
func (r *Renderer) WriteReview(w io.Writer, reg *model.Registry, state model.FormState, submitted bool) error {
	ctx, err := reviewContext(reg, state, submitted)
	if err != nil {
		return err
	}
	return r.write(w, "review.tpl", ctx)
}

func reviewContext(reg *model.Registry, state model.FormState, submitted bool) (pongo2.Context, error) {
	if reg == nil {
		return nil, errors.New("report: registry required")
	}
	rows := make([]map[string]any, 0, reg.Len())
	for _, step := range reg.Steps() {
		if !step.Visible(state) {
			continue
		}
		switch step.Kind {
		case model.KindTerminalConsent:
			continue
		case model.KindAddressGroup:
			rows = append(rows, row(step.Label, step.Key, formatAddress(state.Address(step.GroupPrefix)), model.MaskNone))
		default:
			rows = append(rows, row(step.Label, step.Key, state.Get(step.Key), step.Mask))
		}
		if fu := step.FollowUp; fu.Triggered(state.Get(step.Key)) {
			rows = append(rows, row(fu.Label, fu.Key, state.Get(fu.Key), fu.Mask))
		}
	}
	return pongo2.Context{
		"flow":      reg.Name(),
		"rows":      rows,
		"submitted": submitted,
	}, nil
}

func row(label, key, value string, m model.Mask) map[string]any {
	if strings.TrimSpace(label) == "" {
		label = key
	}
	return map[string]any{"label": label, "value": strings.TrimSpace(value), "mask": string(m)}
}

func formatAddress(p address.Parts) string {
	line := strings.TrimSpace(strings.Join(nonEmpty(p.Street, p.Unit), " "))
	csz, ok := address.Compose(p)
	if !ok {
		return line
	}
	if line == "" {
		return csz
	}
	return line + ", " + csz
}

func nonEmpty(values ...string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (r *Renderer) write(w io.Writer, name string, ctx pongo2.Context) error {
	rendered, err := r.render(name, ctx)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, rendered)
	return err
}

func (r *Renderer) render(name string, ctx pongo2.Context) (string, error) {
	tmpl, err := r.template(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(ctx, &buf); err != nil {
		return "", fmt.Errorf("report: execute template %q: %w", name, err)
	}

	return dropBlankLines(buf.String()), nil
}

func (r *Renderer) template(name string) (*pongo2.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tmpl, ok := r.templates[name]; ok {
		return tmpl, nil
	}
	tmpl, err := r.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("report: load template %q: %w", name, err)
	}
	r.templates[name] = tmpl
	return tmpl, nil
}

// dropBlankLines removes the whitespace-only lines left behind by block tags.
func dropBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, strings.TrimRight(line, " \t"))
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return strings.Join(kept, "\n") + "\n"
}
