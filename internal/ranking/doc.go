// Package ranking orders duplicate group members from highest to lowest
// quality using a deterministic multi-key comparison over probed metadata.
// Filename quality tags are advertising, not ground truth, so they play no
// part here.
package ranking
