package similarity

import (
	"fmt"
	"math"

	"github.com/hbollon/go-edlib"

	"vidsift/internal/config"
	"vidsift/internal/media/metadata"
	"vidsift/internal/textutil"
)

// Score is the outcome of comparing two records.
type Score struct {
	// Value is the combined weighted score in [0,1].
	Value float64
	// Candidate reports whether the pair clears both signal floors and the
	// combined threshold.
	Candidate bool
	// Anomalous flags a pair whose higher-resolution member carries the lower
	// bitrate. Anomalous pairs still group; the ranking stage surfaces them.
	Anomalous bool
	// Duration and Title expose the individual signals for diagnostics.
	Duration float64
	Title    float64
}

// Scorer compares metadata records under a fixed similarity configuration.
// It memoizes title fingerprints, so a single Scorer should be reused across
// one grouping pass. Not safe for concurrent use.
type Scorer struct {
	cfg          config.Similarity
	fingerprints map[string]*textutil.Fingerprint
}

// NewScorer validates the configuration and builds a Scorer.
func NewScorer(cfg config.Similarity) (*Scorer, error) {
	if cfg.Threshold < 0 || cfg.Threshold > 1 {
		return nil, fmt.Errorf("similarity threshold %v outside [0,1]", cfg.Threshold)
	}
	baseWeight := cfg.DurationWeight + cfg.TitleWeight
	if baseWeight <= 0 {
		return nil, fmt.Errorf("duration and title weights sum to %v, must be positive", baseWeight)
	}
	return &Scorer{
		cfg:          cfg,
		fingerprints: make(map[string]*textutil.Fingerprint),
	}, nil
}

// Score compares two records. Symmetric: Score(a,b) == Score(b,a).
//
// The combined value weights duration against title similarity. Plausibility
// is a compatibility check rather than a similarity signal: a plausible
// resolution/bitrate ordering lifts the score toward 1 by PlausibilityWeight,
// while a violation leaves the base score untouched and sets Anomalous — an
// implausibly encoded copy is still a duplicate of its source.
func (s *Scorer) Score(a, b metadata.Record) Score {
	duration := s.durationScore(a, b)
	title := s.titleScore(a.NormalizedTitle, b.NormalizedTitle)
	plausible, anomalous := plausibility(a, b)

	baseWeight := s.cfg.DurationWeight + s.cfg.TitleWeight
	combined := (s.cfg.DurationWeight*duration + s.cfg.TitleWeight*title) / baseWeight
	if plausible {
		combined += s.cfg.PlausibilityWeight * (1 - combined)
	}

	return Score{
		Value:     combined,
		Candidate: duration >= s.cfg.DurationFloor && title >= s.cfg.TitleFloor && combined >= s.cfg.Threshold,
		Anomalous: anomalous,
		Duration:  duration,
		Title:     title,
	}
}

// durationScore returns 1 within tolerance, decays linearly across the drift
// window, and returns 0 for unknown durations so unprobeable records never
// match anything.
func (s *Scorer) durationScore(a, b metadata.Record) float64 {
	if !a.HasDuration() || !b.HasDuration() {
		return 0
	}
	diff := math.Abs(a.DurationSeconds - b.DurationSeconds)
	longer := math.Max(a.DurationSeconds, b.DurationSeconds)
	tolerance := math.Max(s.cfg.DurationAbsTolerance, s.cfg.DurationRelTolerance*longer)
	if diff <= tolerance {
		return 1
	}
	limit := tolerance + s.cfg.DurationMaxDrift
	if diff >= limit {
		return 0
	}
	return 1 - (diff-tolerance)/s.cfg.DurationMaxDrift
}

// titleScore blends Jaro-Winkler edit similarity with token-frequency cosine
// similarity, taking the stronger signal. Exact matches short-circuit to 1.
func (s *Scorer) titleScore(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	var edit float64
	if sim, err := edlib.StringsSimilarity(a, b, edlib.JaroWinkler); err == nil {
		edit = float64(sim)
	}
	tokens := textutil.CosineSimilarity(s.fingerprint(a), s.fingerprint(b))
	return math.Max(edit, tokens)
}

func (s *Scorer) fingerprint(title string) *textutil.Fingerprint {
	if fp, ok := s.fingerprints[title]; ok {
		return fp
	}
	fp := textutil.NewFingerprint(title)
	s.fingerprints[title] = fp
	return fp
}

// plausibility checks that resolution and bitrate ordering agree. The first
// return is true for agreeing pairs, the second flags a quality-anomalous
// violation. Pairs with unknown resolution or bitrate are neither.
func plausibility(a, b metadata.Record) (bool, bool) {
	if !a.HasResolution() || !b.HasResolution() || !a.HasBitRate() || !b.HasBitRate() {
		return false, false
	}
	pixelsA, pixelsB := a.Pixels(), b.Pixels()
	if pixelsA == pixelsB {
		return true, false
	}
	if (pixelsA > pixelsB) == (a.BitRate > b.BitRate) {
		return true, false
	}
	return false, true
}
