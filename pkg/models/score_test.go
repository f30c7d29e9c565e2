package models

import "testing"

func TestTierForScoreBoundaries(t *testing.T) {
	tests := []struct {
		overall int
		want    Tier
	}{
		{100, TierS},
		{90, TierS},
		{89, TierA},
		{75, TierA},
		{74, TierB},
		{60, TierB},
		{59, TierC},
		{40, TierC},
		{39, TierD},
		{0, TierD},
	}

	for _, tt := range tests {
		if got := TierForScore(tt.overall); got != tt.want {
			t.Errorf("TierForScore(%d) = %s, want %s", tt.overall, got, tt.want)
		}
	}
}

func TestTierRecommendations(t *testing.T) {
	tests := []struct {
		tier Tier
		want string
	}{
		{TierS, "pursue-aggressively"},
		{TierA, "test-hypothesis"},
		{TierB, "explore-further"},
		{TierC, "deprioritize"},
		{TierD, "skip"},
	}

	for _, tt := range tests {
		if got := tt.tier.Recommendation(); got != tt.want {
			t.Errorf("%s.Recommendation() = %q, want %q", tt.tier, got, tt.want)
		}
	}
}

func TestScoreDimensionValid(t *testing.T) {
	for _, d := range ScoreDimensionOrder {
		if !d.Valid() {
			t.Errorf("expected %s to be valid", d)
		}
	}
	if ScoreDimension("vibes").Valid() {
		t.Error("expected unknown dimension to be invalid")
	}
}
