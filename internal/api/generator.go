package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/venturelab/ideaforge/internal/synth"
)

const generatorSystemPrompt = `You are a venture analyst generating startup concept material.
You always respond with a single JSON object and no surrounding prose.
Field values are concise, concrete, and specific to the entities you are given.`

// Generator produces structured content through the Anthropic API. It
// implements synth.ContentGenerator: one request per call, the response
// parsed from the model's JSON output.
type Generator struct {
	client    *Client
	maxTokens int64
}

var _ synth.ContentGenerator = (*Generator)(nil)

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithMaxTokens sets the per-call output token ceiling. The default is 2048;
// responses here are small structured objects, not long-form text.
func WithMaxTokens(n int64) GeneratorOption {
	return func(g *Generator) {
		if n > 0 {
			g.maxTokens = n
		}
	}
}

// NewGenerator creates a generator backed by the given client.
func NewGenerator(client *Client, opts ...GeneratorOption) *Generator {
	g := &Generator{client: client, maxTokens: 2048}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate runs one content generation call and parses the structured
// result. Shape validation stays with the caller; this layer only
// guarantees syntactically valid JSON keyed the way the model returned it.
func (g *Generator) Generate(ctx context.Context, pc synth.PromptContext, shape synth.ResultShape) (synth.StructuredResult, error) {
	prompt := buildPrompt(pc, shape)

	resp, err := g.client.sdk().Messages.New(ctx, anthropic.MessageNewParams{
		Model:     g.client.Model(),
		MaxTokens: g.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: generatorSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("API call failed: %w", err)
	}

	g.client.Tracker().Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	var text strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(variant.Text)
		}
	}

	return parseStructured(text.String())
}

// buildPrompt assembles the generation prompt from the strategy context and
// the requested result shape.
func buildPrompt(pc synth.PromptContext, shape synth.ResultShape) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Strategy: %s\n", pc.StrategyName)
	if pc.Thesis != "" {
		fmt.Fprintf(&b, "Thesis: %s\n", pc.Thesis)
	}

	if len(pc.Entities) > 0 {
		b.WriteString("\nEntities:\n")
		for _, e := range pc.Entities {
			fmt.Fprintf(&b, "- %s: %s (id %s, level %d)", e.Dimension, e.Name, e.ID, e.Level)
			if e.Description != "" {
				fmt.Fprintf(&b, ": %s", e.Description)
			}
			b.WriteString("\n")
		}
	}

	if len(pc.Enrichment) > 0 {
		b.WriteString("\nMarket context:\n")
		for _, e := range pc.Entities {
			if summary, ok := pc.Enrichment[e.ID]; ok {
				fmt.Fprintf(&b, "- %s: %s\n", e.Name, summary)
			}
		}
	}

	if pc.Subject != "" {
		fmt.Fprintf(&b, "\nSubject: %s\n", pc.Subject)
	}

	fmt.Fprintf(&b, "\nReturn ONLY a JSON object named %q with exactly these fields:\n", shape.Name)
	for _, f := range shape.Fields {
		req := "optional"
		if f.Required {
			req = "required"
		}
		fmt.Fprintf(&b, "  %q (%s, %s): %s\n", f.Key, f.Kind, req, f.Description)
	}
	b.WriteString("No other text before or after the JSON object.\n")

	return b.String()
}

// parseStructured extracts the JSON object from a model response and
// decodes it. Models occasionally wrap the object in prose or a code
// fence, so the parse is brace-delimited rather than whole-string.
func parseStructured(response string) (synth.StructuredResult, error) {
	jsonStart := strings.Index(response, "{")
	jsonEnd := strings.LastIndex(response, "}")
	if jsonStart == -1 || jsonEnd == -1 || jsonEnd <= jsonStart {
		return nil, fmt.Errorf("no valid JSON found in response: %s", truncate(response, 200))
	}

	jsonStr := response[jsonStart : jsonEnd+1]

	// UseNumber keeps numeric sub-scores exact instead of forcing float64.
	dec := json.NewDecoder(bytes.NewReader([]byte(jsonStr)))
	dec.UseNumber()

	var result synth.StructuredResult
	if err := dec.Decode(&result); err != nil {
		return nil, fmt.Errorf("parse JSON: %w (response: %s)", err, truncate(jsonStr, 200))
	}

	return result, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
