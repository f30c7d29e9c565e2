package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/venturelab/ideaforge/internal/batch"
	"github.com/venturelab/ideaforge/internal/catalog"
	"github.com/venturelab/ideaforge/internal/crossproduct"
	"github.com/venturelab/ideaforge/internal/filter"
	"github.com/venturelab/ideaforge/internal/scoring"
	"github.com/venturelab/ideaforge/internal/synth"
	"github.com/venturelab/ideaforge/pkg/models"
)

// Step IDs of the standard workflow.
const (
	StepFilterDimensions   = "filter-dimensions"
	StepEnrichIndustries   = "enrich-industries"
	StepGenerateSeeds      = "generate-seeds"
	StepSynthesizeConcepts = "synthesize-concepts"
	StepScoreConcepts      = "score-concepts"
	StepRankConcepts       = "rank-concepts"
)

// Operation names the standard steps reference.
const (
	OpFilterDimensions = "catalog.filter"
	OpEnrichEntities   = "enrich.entities"
	OpGenerateSeeds    = "seeds.generate"
	OpSynthesize       = "concepts.synthesize"
	OpScore            = "concepts.score"
	OpRank             = "concepts.rank"
)

// EnrichShape is the result shape for per-entity enrichment calls.
var EnrichShape = synth.ResultShape{
	Name: "enrichment",
	Fields: []synth.FieldSpec{
		{Key: "summary", Kind: synth.FieldString, Required: true, Description: "market context summary for the entity"},
	},
}

// ScoreShape is the result shape for per-concept scoring calls. Every
// dimension is optional: partial scoring degrades gracefully through
// weight renormalization, and a concept with no dimensions at all fails
// scoring for that concept only.
var ScoreShape = buildScoreShape()

func buildScoreShape() synth.ResultShape {
	shape := synth.ResultShape{Name: "viability"}
	for _, d := range models.ScoreDimensionOrder {
		shape.Fields = append(shape.Fields,
			synth.FieldSpec{Key: string(d), Kind: synth.FieldNumber, Description: "sub-score 0-100"},
			synth.FieldSpec{Key: string(d) + "_rationale", Kind: synth.FieldString, Description: "justification"},
		)
	}
	return shape
}

// EnrichmentOutput is the enrichment step's captured output.
type EnrichmentOutput struct {
	// Summaries maps entity ID to its enrichment summary.
	Summaries map[string]string `json:"summaries"`
	// Failed maps entity ID to the captured per-item error.
	Failed map[string]string `json:"failed,omitempty"`
}

// SeedsOutput is the seed-generation step's captured output.
type SeedsOutput struct {
	// Seeds is the enumerated cross-product, in enumeration order.
	Seeds []models.ConceptSeed `json:"seeds"`
	// MissingRequired lists required dimensions with no candidates. When
	// non-empty, Seeds is empty and that is the reported outcome, not an
	// error.
	MissingRequired []models.DimensionName `json:"missing_required,omitempty"`
}

// SynthesisOutput is the synthesis step's captured output.
type SynthesisOutput struct {
	// Concepts holds successfully synthesized concepts in seed order.
	Concepts []*models.Concept `json:"concepts"`
	// Failed maps seed key to the captured per-seed error.
	Failed map[string]string `json:"failed,omitempty"`
}

// ScoringOutput is the scoring step's captured output.
type ScoringOutput struct {
	// Scored holds concepts that met the strategy's minimum score.
	Scored []*models.Concept `json:"scored"`
	// Dropped lists concept IDs scored below the minimum.
	Dropped []string `json:"dropped,omitempty"`
	// Failed maps concept ID to the captured per-concept error.
	Failed map[string]string `json:"failed,omitempty"`
}

// RankingOutput is the ranking step's captured output.
type RankingOutput struct {
	// Ranked is the ordered result.
	Ranked []scoring.RankedConcept `json:"ranked"`
	// Tiers partitions the returned concepts by tier.
	Tiers map[models.Tier][]string `json:"tiers"`
}

// Pipeline wires the generation components into executable workflow steps.
type Pipeline struct {
	// Catalog provides the taxonomy dimensions.
	Catalog *catalog.Catalog
	// Generator is the external content generation collaborator.
	Generator synth.ContentGenerator
	// Concurrency bounds fan-out steps (enrichment, synthesis, scoring).
	Concurrency int
	// GenerationTimeout caps each collaborator call; zero disables the cap.
	GenerationTimeout time.Duration
	// Weights are the scoring weights; nil uses scoring.DefaultWeights.
	Weights map[models.ScoreDimension]float64
	// TopN truncates the final ranking; zero keeps everything.
	TopN int
	// MaxParallelSteps bounds concurrent step execution.
	MaxParallelSteps int
	// Logger receives debug output.
	Logger *DebugLogger
}

// StandardSteps builds the standard workflow DAG for a strategy: filter →
// {enrichment, seeds} → synthesis → scoring → ranking.
func StandardSteps() []*models.PipelineStep {
	return []*models.PipelineStep{
		{ID: StepFilterDimensions, Phase: models.PhaseGeneration, Operation: OpFilterDimensions},
		{ID: StepEnrichIndustries, Phase: models.PhaseEnrichment, Operation: OpEnrichEntities,
			DependsOn: []string{StepFilterDimensions}},
		{ID: StepGenerateSeeds, Phase: models.PhaseGeneration, Operation: OpGenerateSeeds,
			DependsOn: []string{StepFilterDimensions}},
		{ID: StepSynthesizeConcepts, Phase: models.PhaseGeneration, Operation: OpSynthesize,
			DependsOn: []string{StepGenerateSeeds, StepEnrichIndustries}},
		{ID: StepScoreConcepts, Phase: models.PhaseScoring, Operation: OpScore,
			DependsOn: []string{StepSynthesizeConcepts}},
		{ID: StepRankConcepts, Phase: models.PhaseAnalysis, Operation: OpRank,
			DependsOn: []string{StepScoreConcepts}},
	}
}

// NewRun validates the strategy and prepares an orchestrator with the
// standard workflow registered for it. Validation failures and malformed
// filters surface here, synchronously, before anything generates.
func (p *Pipeline) NewRun(strategy *models.StrategyConfig) (*Orchestrator, *models.WorkflowExecution, error) {
	if err := strategy.Validate(); err != nil {
		return nil, nil, err
	}
	for _, dim := range strategy.EnabledDimensions() {
		dc := strategy.Dimensions[dim]
		if _, err := filter.Apply(nil, dc.Filter); err != nil {
			return nil, nil, fmt.Errorf("dimension %s: %w", dim, err)
		}
	}

	o := New(WithMaxParallelSteps(p.MaxParallelSteps), WithLogger(p.Logger))
	o.Register(OpFilterDimensions, p.filterDimensions(strategy))
	o.Register(OpEnrichEntities, p.enrichEntities(strategy))
	o.Register(OpGenerateSeeds, p.generateSeeds(strategy))
	o.Register(OpSynthesize, p.synthesizeConcepts(strategy))
	o.Register(OpScore, p.scoreConcepts(strategy))
	o.Register(OpRank, p.rankConcepts())

	run := NewExecution(strategy.ID, StandardSteps())
	return o, run, nil
}

// Run executes the standard workflow for a strategy, draining events
// internally. Callers that want the event stream use NewRun directly.
func (p *Pipeline) Run(ctx context.Context, strategy *models.StrategyConfig) (*models.WorkflowExecution, error) {
	o, run, err := p.NewRun(strategy)
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		for range o.Events() {
		}
		close(done)
	}()

	err = o.Execute(ctx, run)
	<-done
	return run, err
}

// filterDimensions resolves each enabled dimension's filtered candidate
// list from the catalog.
func (p *Pipeline) filterDimensions(strategy *models.StrategyConfig) StepFunc {
	return func(_ context.Context, _ *models.PipelineStep, _ map[string]any) (any, error) {
		out := make(map[models.DimensionName][]models.DimensionEntity)
		for _, dim := range strategy.EnabledDimensions() {
			entities, err := p.Catalog.Lookup(dim, strategy.Dimensions[dim].Filter)
			if err != nil {
				return nil, err
			}
			out[dim] = entities
		}
		return out, nil
	}
}

// enrichEntities fans out over the filtered industry candidates, asking the
// generator for a market summary per entity. Per-item failures are captured
// and the rest of the pipeline proceeds with whatever enrichment succeeded.
func (p *Pipeline) enrichEntities(strategy *models.StrategyConfig) StepFunc {
	return func(ctx context.Context, _ *models.PipelineStep, deps map[string]any) (any, error) {
		dims, err := dimensionsDep(deps)
		if err != nil {
			return nil, err
		}

		out := EnrichmentOutput{Summaries: make(map[string]string), Failed: make(map[string]string)}
		entities := dims[models.DimensionIndustry]
		if len(entities) == 0 {
			return out, nil
		}

		work := batch.WithTimeout(p.GenerationTimeout,
			func(ctx context.Context, e models.DimensionEntity) (string, error) {
				result, err := p.Generator.Generate(ctx, synth.PromptContext{
					StrategyID:   strategy.ID,
					StrategyName: strategy.Name,
					Thesis:       strategy.Thesis,
					Subject:      e.Name,
					Entities: []synth.EntityContext{{
						Dimension:   string(models.DimensionIndustry),
						ID:          e.ID,
						Name:        e.Name,
						Level:       e.Level,
						Description: e.Description,
					}},
				}, EnrichShape)
				if err != nil {
					return "", err
				}
				if err := EnrichShape.Validate(result); err != nil {
					return "", err
				}
				return result.String("summary"), nil
			})

		results := batch.Run(ctx, entities, p.concurrency(),
			func(e models.DimensionEntity) string { return e.ID }, work)

		for id, r := range results {
			if r.Err != nil {
				out.Failed[id] = r.Err.Error()
				continue
			}
			out.Summaries[id] = r.Value
		}
		return out, nil
	}
}

// generateSeeds enumerates the cross-product for the strategy.
func (p *Pipeline) generateSeeds(strategy *models.StrategyConfig) StepFunc {
	return func(_ context.Context, _ *models.PipelineStep, deps map[string]any) (any, error) {
		dims, err := dimensionsDep(deps)
		if err != nil {
			return nil, err
		}

		out := SeedsOutput{
			Seeds:           crossproduct.Generate(dims, strategy),
			MissingRequired: crossproduct.MissingRequired(dims, strategy),
		}
		return out, nil
	}
}

// synthesizeConcepts fans out over seeds, synthesizing a concept per seed.
func (p *Pipeline) synthesizeConcepts(strategy *models.StrategyConfig) StepFunc {
	synthesizer := synth.NewSynthesizer(p.Generator)

	return func(ctx context.Context, _ *models.PipelineStep, deps map[string]any) (any, error) {
		seedsOut, ok := deps[StepGenerateSeeds].(SeedsOutput)
		if !ok {
			return nil, fmt.Errorf("missing seeds output")
		}
		var enrichment map[string]string
		if enrichOut, ok := deps[StepEnrichIndustries].(EnrichmentOutput); ok {
			enrichment = enrichOut.Summaries
		}

		work := batch.WithTimeout(p.GenerationTimeout,
			func(ctx context.Context, seed models.ConceptSeed) (*models.Concept, error) {
				return synthesizer.Synthesize(ctx, seed, strategy, enrichment)
			})

		results := batch.Run(ctx, seedsOut.Seeds, p.concurrency(),
			func(s models.ConceptSeed) string { return s.Key() }, work)

		out := SynthesisOutput{Failed: make(map[string]string)}
		for _, seed := range seedsOut.Seeds {
			r := results[seed.Key()]
			if r.Err != nil {
				out.Failed[seed.Key()] = r.Err.Error()
				continue
			}
			out.Concepts = append(out.Concepts, r.Value)
		}
		return out, nil
	}
}

// scoreConcepts fans out over concepts, asking the generator for
// sub-scores and attaching the computed viability score. Concepts below
// the strategy's minimum are dropped from the pipeline but reported.
func (p *Pipeline) scoreConcepts(strategy *models.StrategyConfig) StepFunc {
	return func(ctx context.Context, _ *models.PipelineStep, deps map[string]any) (any, error) {
		synthOut, ok := deps[StepSynthesizeConcepts].(SynthesisOutput)
		if !ok {
			return nil, fmt.Errorf("missing synthesis output")
		}

		work := batch.WithTimeout(p.GenerationTimeout,
			func(ctx context.Context, c *models.Concept) (models.ViabilityScore, error) {
				return p.scoreOne(ctx, strategy, c)
			})

		results := batch.Run(ctx, synthOut.Concepts, p.concurrency(),
			func(c *models.Concept) string { return c.ID }, work)

		out := ScoringOutput{Failed: make(map[string]string)}
		for _, c := range synthOut.Concepts {
			r := results[c.ID]
			if r.Err != nil {
				out.Failed[c.ID] = r.Err.Error()
				continue
			}
			c.AttachScore(r.Value)
			if c.Score.Overall < strategy.Constraints.MinViabilityScore {
				out.Dropped = append(out.Dropped, c.ID)
				continue
			}
			out.Scored = append(out.Scored, c)
		}
		return out, nil
	}
}

// scoreOne runs one scoring call and folds the generator's sub-scores into
// a viability score using the configured weights.
func (p *Pipeline) scoreOne(ctx context.Context, strategy *models.StrategyConfig, c *models.Concept) (models.ViabilityScore, error) {
	pc := synth.PromptContext{
		StrategyID:   strategy.ID,
		StrategyName: strategy.Name,
		Thesis:       strategy.Thesis,
		Subject:      c.Name(),
	}
	for _, d := range models.DimensionOrder {
		if e, ok := c.Seed[d]; ok {
			pc.Entities = append(pc.Entities, synth.EntityContext{
				Dimension: string(d), ID: e.ID, Name: e.Name, Level: e.Level, Description: e.Description,
			})
		}
	}

	result, err := p.Generator.Generate(ctx, pc, ScoreShape)
	if err != nil {
		return models.ViabilityScore{}, err
	}
	if err := ScoreShape.Validate(result); err != nil {
		return models.ViabilityScore{}, err
	}

	weights := p.Weights
	if weights == nil {
		weights = scoring.DefaultWeights
	}

	inputs := make(map[models.ScoreDimension]scoring.DimensionInput)
	for _, d := range models.ScoreDimensionOrder {
		v, ok := result.Number(string(d))
		if !ok {
			continue // missing dimension degrades gracefully
		}
		inputs[d] = scoring.DimensionInput{
			Score:     clampScore(v),
			Weight:    weights[d],
			Rationale: result.String(string(d) + "_rationale"),
		}
	}

	return scoring.Score(inputs)
}

// rankConcepts orders the scored concepts and partitions them into tiers.
func (p *Pipeline) rankConcepts() StepFunc {
	return func(_ context.Context, _ *models.PipelineStep, deps map[string]any) (any, error) {
		scoreOut, ok := deps[StepScoreConcepts].(ScoringOutput)
		if !ok {
			return nil, fmt.Errorf("missing scoring output")
		}

		ranked, tiers := scoring.Rank(scoreOut.Scored, scoring.RankOptions{TopN: p.TopN})
		return RankingOutput{Ranked: ranked, Tiers: tiers}, nil
	}
}

func (p *Pipeline) concurrency() int {
	if p.Concurrency > 0 {
		return p.Concurrency
	}
	return 4
}

// dimensionsDep extracts the filter step's output from a dependency map.
func dimensionsDep(deps map[string]any) (map[models.DimensionName][]models.DimensionEntity, error) {
	dims, ok := deps[StepFilterDimensions].(map[models.DimensionName][]models.DimensionEntity)
	if !ok {
		return nil, fmt.Errorf("missing filtered dimensions output")
	}
	return dims, nil
}

// clampScore folds a generated numeric sub-score into the 0-100 range.
func clampScore(v float64) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return int(v + 0.5)
	}
}
