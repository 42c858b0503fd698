// Package namenorm reduces video filenames to comparable base titles by
// stripping release metadata: resolution markers, source and codec tags,
// audio descriptors, release-group suffixes, and bracketed annotations.
// Tokens outside the vocabulary are retained, so unusually named files still
// group by their common remaining substring.
package namenorm
