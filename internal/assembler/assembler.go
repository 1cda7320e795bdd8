// Package assembler builds the per-turn grounding payload sent to the completion service.
package assembler

import (
	"fmt"
	"strings"
	"text/template"

	"groundchat/internal/domain"
)

// DefaultTemplate is the counselor persona. It receives the profile fields and the
// reference text.
const DefaultTemplate = `You are an expert psychological counselor. Follow these instructions strictly:
1. Answer only from the information in the references below.
2. If the references do not contain the answer, say politely that your current sources have no information on this matter.
3. Address the user ({{.Name}}) in a way that suits their age ({{.Age}}){{if .Gender}}, gender ({{.Gender}}){{end}}{{if .Education}} and education level ({{.Education}}){{end}}.

Available references:
{{.References}}
`

type Assembler struct {
	window int
	tmpl   *template.Template
}

type Option func(*Assembler) error

// WithWindow sets how many of the most recent turns are sent.
func WithWindow(n int) Option {
	return func(a *Assembler) error {
		if n <= 0 {
			return fmt.Errorf("window must be positive, got %d", n)
		}
		a.window = n
		return nil
	}
}

// WithTemplate replaces the persona template.
func WithTemplate(text string) Option {
	return func(a *Assembler) error {
		t, err := template.New("persona").Option("missingkey=error").Parse(text)
		if err != nil {
			return fmt.Errorf("parse persona template: %w", err)
		}
		a.tmpl = t
		return nil
	}
}

func New(opts ...Option) (*Assembler, error) {
	a := &Assembler{
		window: 5,
		tmpl:   template.Must(template.New("persona").Parse(DefaultTemplate)),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

type personaData struct {
	domain.UserProfile
	References string
}

// Assemble renders the persona with the references embedded verbatim and attaches the
// last window turns in their original order. turns is not modified.
func (a *Assembler) Assemble(result domain.RetrievalResult, profile domain.UserProfile, turns []domain.Turn) (domain.GroundingPayload, error) {
	refs := result.Text()
	if strings.TrimSpace(refs) == "" {
		refs = domain.NoReferencesText
	}
	var b strings.Builder
	if err := a.tmpl.Execute(&b, personaData{UserProfile: profile, References: refs}); err != nil {
		return domain.GroundingPayload{}, fmt.Errorf("render persona: %w", err)
	}
	return domain.GroundingPayload{
		System:     b.String(),
		References: refs,
		Window:     Window(turns, a.window),
	}, nil
}

// Window returns a copy of the last n turns, oldest first.
func Window(turns []domain.Turn, n int) []domain.Turn {
	if n < 0 {
		n = 0
	}
	if n < len(turns) {
		turns = turns[len(turns)-n:]
	}
	out := make([]domain.Turn, len(turns))
	copy(out, turns)
	return out
}
