package filter

import (
	"errors"
	"testing"

	"github.com/venturelab/ideaforge/pkg/models"
)

func sampleEntities() []models.DimensionEntity {
	return []models.DimensionEntity{
		{ID: "ind-1", Name: "Healthcare", Level: 1},
		{ID: "ind-2", Name: "Home Healthcare", Level: 2},
		{ID: "ind-3", Name: "Finance", Level: 1},
		{ID: "ind-4", Name: "Retail Banking", Level: 2},
		{ID: "ind-5", Name: "Logistics", Level: 1},
	}
}

func TestApplyNilFilter(t *testing.T) {
	got, err := Apply(sampleEntities(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 5 {
		t.Errorf("expected all 5 entities, got %d", len(got))
	}
}

func TestApplyIncludeIDs(t *testing.T) {
	got, err := Apply(sampleEntities(), &models.DimensionFilter{
		IncludeIDs: []string{"ind-3", "ind-1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(got))
	}
	// Original input order, not include-list order.
	if got[0].ID != "ind-1" || got[1].ID != "ind-3" {
		t.Errorf("expected original order [ind-1 ind-3], got [%s %s]", got[0].ID, got[1].ID)
	}
}

func TestApplyExcludeWinsOverInclude(t *testing.T) {
	got, err := Apply(sampleEntities(), &models.DimensionFilter{
		IncludeIDs: []string{"ind-1", "ind-2"},
		ExcludeIDs: []string{"ind-2"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "ind-1" {
		t.Errorf("expected only ind-1 (deny wins on conflict), got %v", got)
	}
}

func TestApplyLevels(t *testing.T) {
	got, err := Apply(sampleEntities(), &models.DimensionFilter{Levels: []int{2}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 level-2 entities, got %d", len(got))
	}
}

func TestApplyNamePatternCaseInsensitive(t *testing.T) {
	got, err := Apply(sampleEntities(), &models.DimensionFilter{NamePattern: "healthcare"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 healthcare matches, got %d", len(got))
	}
}

func TestApplyInvalidPattern(t *testing.T) {
	_, err := Apply(sampleEntities(), &models.DimensionFilter{NamePattern: "("})
	if !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("expected ErrInvalidPattern, got %v", err)
	}
}

func TestApplyCapPreservesOrder(t *testing.T) {
	got, err := Apply(sampleEntities(), &models.DimensionFilter{Limit: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entities, got %d", len(got))
	}
	want := []string{"ind-1", "ind-2", "ind-3"}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestApplyCapLargerThanInput(t *testing.T) {
	got, err := Apply(sampleEntities(), &models.DimensionFilter{Limit: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 5 {
		t.Errorf("expected all 5 entities, got %d", len(got))
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	in := sampleEntities()
	_, err := Apply(in, &models.DimensionFilter{ExcludeIDs: []string{"ind-1"}, Limit: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in[0].ID != "ind-1" || len(in) != 5 {
		t.Error("input slice was mutated")
	}
}
