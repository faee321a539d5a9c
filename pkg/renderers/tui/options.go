package tui

import "github.com/goliatone/go-intake/pkg/report"

// Theme captures optional formatting hints the driver can apply when printing
// messages. Keep minimal to avoid coupling runner logic to ANSI specifics.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
	// BackLabel is the extra choice appended to select prompts, and the token
	// typed into text prompts, that steps back.
	BackLabel string
	BackToken string
}

// DefaultTheme is used when no theme is configured.
var DefaultTheme = Theme{
	InfoPrefix:  "",
	ErrorPrefix: "! ",
	BackLabel:   "« Back",
	BackToken:   "<",
}

// Option configures the Runner.
type Option func(*Runner)

// WithPromptDriver overrides the prompt driver used by the runner.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Runner) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithTheme applies optional message prefixes and back affordances. Empty
// fields keep their defaults.
func WithTheme(theme Theme) Option {
	return func(r *Runner) {
		if theme.InfoPrefix != "" {
			r.theme.InfoPrefix = theme.InfoPrefix
		}
		if theme.ErrorPrefix != "" {
			r.theme.ErrorPrefix = theme.ErrorPrefix
		}
		if theme.BackLabel != "" {
			r.theme.BackLabel = theme.BackLabel
		}
		if theme.BackToken != "" {
			r.theme.BackToken = theme.BackToken
		}
	}
}

// WithReview prints the application review before the consent prompt.
func WithReview(renderer *report.Renderer) Option {
	return func(r *Runner) {
		r.review = renderer
	}
}
