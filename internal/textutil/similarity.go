package textutil

// CosineSimilarity computes the cosine similarity between two fingerprints,
// in [0, 1]. A nil or empty fingerprint compares as 0 to everything.
func CosineSimilarity(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	// Walk the smaller token set; only shared tokens contribute.
	if len(b.tokens) < len(a.tokens) {
		a, b = b, a
	}
	var dot float64
	for token, count := range a.tokens {
		dot += count * b.tokens[token]
	}
	if dot == 0 {
		return 0
	}
	return dot / (a.norm * b.norm)
}
