package scoring

import (
	"testing"

	"github.com/venturelab/ideaforge/pkg/models"
)

func scoredConcept(id string, subScores map[models.ScoreDimension]DimensionInput) *models.Concept {
	score, err := Score(subScores)
	if err != nil {
		panic(err)
	}
	c := &models.Concept{ID: id, Status: models.ConceptStatusGenerated}
	c.AttachScore(score)
	return c
}

func uniform(score int) map[models.ScoreDimension]DimensionInput {
	return map[models.ScoreDimension]DimensionInput{
		models.ScoreMarketSize:      {Score: score, Weight: 0.5},
		models.ScoreProblemSeverity: {Score: score, Weight: 0.5},
	}
}

func TestRankOrdersByScoreDescending(t *testing.T) {
	concepts := []*models.Concept{
		scoredConcept("c-low", uniform(45)),
		scoredConcept("c-high", uniform(92)),
		scoredConcept("c-mid", uniform(70)),
	}

	ranked, tiers := Rank(concepts, RankOptions{})
	if len(ranked) != 3 {
		t.Fatalf("expected 3 ranked concepts, got %d", len(ranked))
	}

	want := []string{"c-high", "c-mid", "c-low"}
	for i, id := range want {
		if ranked[i].Concept.ID != id {
			t.Errorf("rank %d: got %s, want %s", i+1, ranked[i].Concept.ID, id)
		}
		if ranked[i].Rank != i+1 {
			t.Errorf("expected rank %d, got %d", i+1, ranked[i].Rank)
		}
	}

	if len(tiers[models.TierS]) != 1 || tiers[models.TierS][0] != "c-high" {
		t.Errorf("expected c-high in tier S, got %v", tiers[models.TierS])
	}
	if len(tiers[models.TierB]) != 1 || len(tiers[models.TierC]) != 1 {
		t.Errorf("unexpected tier partition: %v", tiers)
	}
}

func TestRankTieBreaksByID(t *testing.T) {
	concepts := []*models.Concept{
		scoredConcept("c-bbb", uniform(70)),
		scoredConcept("c-aaa", uniform(70)),
	}

	ranked, _ := Rank(concepts, RankOptions{})
	if ranked[0].Concept.ID != "c-aaa" || ranked[1].Concept.ID != "c-bbb" {
		t.Errorf("expected tie broken by ID ascending, got [%s %s]",
			ranked[0].Concept.ID, ranked[1].Concept.ID)
	}
}

func TestRankIdempotent(t *testing.T) {
	concepts := []*models.Concept{
		scoredConcept("c-1", uniform(88)),
		scoredConcept("c-2", uniform(61)),
		scoredConcept("c-3", uniform(61)),
		scoredConcept("c-4", uniform(95)),
	}

	first, _ := Rank(concepts, RankOptions{})

	reordered := make([]*models.Concept, len(first))
	for i, rc := range first {
		reordered[i] = rc.Concept
	}
	second, _ := Rank(reordered, RankOptions{})

	for i := range first {
		if first[i].Concept.ID != second[i].Concept.ID {
			t.Errorf("rank %d changed on re-rank: %s vs %s",
				i+1, first[i].Concept.ID, second[i].Concept.ID)
		}
	}
}

func TestRankWeightOverrides(t *testing.T) {
	c := scoredConcept("c-1", map[models.ScoreDimension]DimensionInput{
		models.ScoreMarketSize: {Score: 100, Weight: 0.5},
		models.ScoreTiming:     {Score: 0, Weight: 0.5},
	})

	// Stored aggregate is 50. Overriding timing's weight to zero leaves
	// only market size, so the display score becomes 100.
	ranked, tiers := Rank([]*models.Concept{c}, RankOptions{
		WeightOverrides: map[models.ScoreDimension]float64{models.ScoreTiming: 0},
	})

	if ranked[0].DisplayScore != 100 {
		t.Errorf("expected display score 100 under overrides, got %d", ranked[0].DisplayScore)
	}
	// Stored score is untouched.
	if c.Score.Overall != 50 {
		t.Errorf("stored overall mutated: %d", c.Score.Overall)
	}
	if len(tiers[models.TierS]) != 1 {
		t.Errorf("tier partition must follow the display score: %v", tiers)
	}
}

func TestRankTopNTiersOverReturnedSlice(t *testing.T) {
	concepts := []*models.Concept{
		scoredConcept("c-1", uniform(95)),
		scoredConcept("c-2", uniform(80)),
		scoredConcept("c-3", uniform(65)),
		scoredConcept("c-4", uniform(45)),
	}

	ranked, tiers := Rank(concepts, RankOptions{TopN: 2})
	if len(ranked) != 2 {
		t.Fatalf("expected 2 results with TopN=2, got %d", len(ranked))
	}

	total := 0
	for _, ids := range tiers {
		total += len(ids)
	}
	if total != 2 {
		t.Errorf("tiers must cover only the returned slice, got %d entries", total)
	}
	if len(tiers[models.TierC]) != 0 {
		t.Errorf("truncated concepts must not appear in tiers: %v", tiers)
	}
}

func TestRankSkipsUnscored(t *testing.T) {
	concepts := []*models.Concept{
		{ID: "c-unscored", Status: models.ConceptStatusGenerated},
		scoredConcept("c-scored", uniform(75)),
	}

	ranked, _ := Rank(concepts, RankOptions{})
	if len(ranked) != 1 || ranked[0].Concept.ID != "c-scored" {
		t.Errorf("expected only scored concepts in ranking, got %v", ranked)
	}
}
