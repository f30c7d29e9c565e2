package synth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/venturelab/ideaforge/pkg/models"
)

// ErrGenerationFailed indicates the content generator errored or returned a
// result that does not satisfy the concept shape. The failure is isolated
// to the concept attempt it occurred in.
var ErrGenerationFailed = errors.New("content generation failed")

// ConceptShape is the result shape every synthesized concept must satisfy.
// The field values themselves stay opaque to the system.
var ConceptShape = ResultShape{
	Name: "concept",
	Fields: []FieldSpec{
		{Key: "name", Kind: FieldString, Required: true, Description: "short product name"},
		{Key: "pitch", Kind: FieldString, Required: true, Description: "one-paragraph pitch"},
		{Key: "business_model", Kind: FieldString, Required: true, Description: "how the business makes money"},
		{Key: "target_customer", Kind: FieldString, Required: true, Description: "who buys this"},
		{Key: "differentiator", Kind: FieldString, Required: false, Description: "what sets it apart"},
	},
}

// Synthesizer builds draft concepts from seeds. All free-text content comes
// from the injected generator; the synthesizer only assembles context,
// assigns identity, and links the result back to its seed and strategy.
type Synthesizer struct {
	gen ContentGenerator
}

// NewSynthesizer creates a synthesizer backed by the given generator.
func NewSynthesizer(gen ContentGenerator) *Synthesizer {
	return &Synthesizer{gen: gen}
}

// Synthesize produces a draft concept for the seed. It does not retry;
// retry policy, if any, belongs to the batch layer above.
func (s *Synthesizer) Synthesize(ctx context.Context, seed models.ConceptSeed, strategy *models.StrategyConfig, enrichment map[string]string) (*models.Concept, error) {
	pc := PromptContext{
		StrategyID:   strategy.ID,
		StrategyName: strategy.Name,
		Thesis:       strategy.Thesis,
		Enrichment:   enrichment,
	}
	for _, d := range models.DimensionOrder {
		if e, ok := seed[d]; ok {
			pc.Entities = append(pc.Entities, EntityContext{
				Dimension:   string(d),
				ID:          e.ID,
				Name:        e.Name,
				Level:       e.Level,
				Description: e.Description,
			})
		}
	}

	result, err := s.gen.Generate(ctx, pc, ConceptShape)
	if err != nil {
		return nil, fmt.Errorf("%w: seed %s: %v", ErrGenerationFailed, seed.Key(), err)
	}
	if err := ConceptShape.Validate(result); err != nil {
		return nil, fmt.Errorf("%w: seed %s: %v", ErrGenerationFailed, seed.Key(), err)
	}

	content := make(map[string]string, len(ConceptShape.Fields))
	for _, f := range ConceptShape.Fields {
		if v := result.String(f.Key); v != "" {
			content[f.Key] = v
		}
	}

	return &models.Concept{
		ID:         ConceptID(strategy.ID, seed),
		StrategyID: strategy.ID,
		Seed:       seed,
		Content:    content,
		Status:     models.ConceptStatusGenerated,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// ConceptID derives a concept identifier from the strategy, the seed's
// entity IDs in canonical order, and a short random suffix. Repeated runs
// over the same seed stay traceable to it without colliding.
func ConceptID(strategyID string, seed models.ConceptSeed) string {
	parts := append([]string{strategyID}, seed.EntityIDs()...)
	parts = append(parts, uuid.New().String()[:8])
	return strings.Join(parts, "-")
}
