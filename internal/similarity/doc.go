// Package similarity scores pairs of video metadata records on a [0,1] scale
// from three signals: duration closeness, normalized-title similarity, and
// resolution/bitrate plausibility. Scoring is symmetric and every weight is a
// tunable, not a constant.
package similarity
