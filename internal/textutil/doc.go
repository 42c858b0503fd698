// Package textutil provides text tokenization, term-frequency fingerprints,
// and cosine similarity used by the duplicate matcher's title signal.
package textutil
