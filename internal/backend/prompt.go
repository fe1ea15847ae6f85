package backend

import (
	"fmt"
	"strings"

	"github.com/cbroglie/mustache"
)

// DefaultPromptTemplate instructs a generative model to summarize. Variables:
// text, min_length, max_length, num_beams.
const DefaultPromptTemplate = `Summarize the following document in {{min_length}} to {{max_length}} tokens.
Write a concise abstractive summary in the language of the document. Do not add facts that are not in the document.

Document:
{{{text}}}

Summary:`

// Prompt renders the instruction prompt sent to generative backends.
type Prompt struct {
	tmpl *mustache.Template
}

// NewPrompt parses tmpl, falling back to DefaultPromptTemplate when empty.
func NewPrompt(tmpl string) (*Prompt, error) {
	if strings.TrimSpace(tmpl) == "" {
		tmpl = DefaultPromptTemplate
	}
	t, err := mustache.ParseString(tmpl)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}
	return &Prompt{tmpl: t}, nil
}

// Render fills the template for one request.
func (p *Prompt) Render(text string, params Params) (string, error) {
	out, err := p.tmpl.Render(map[string]any{
		"text":       text,
		"min_length": params.MinLength,
		"max_length": params.MaxLength,
		"num_beams":  params.NumBeams,
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return out, nil
}
