package namenorm

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	separatorPattern = regexp.MustCompile(`[ ._\-]+`)
	punctPattern     = regexp.MustCompile(`[^\w\s]`)
	releaseStyle     = regexp.MustCompile(`(?i)` + releaseStylePattern)
	groupSuffix      = regexp.MustCompile(groupSuffixPattern)
)

// Normalizer strips release metadata from filenames using a compiled token
// vocabulary plus pre-pass patterns for multi-part tags.
type Normalizer struct {
	vocabulary map[string]struct{}
	classes    []*regexp.Regexp
	prePass    []*regexp.Regexp
	titler     cases.Caser
}

// New builds a Normalizer from the default vocabulary plus any extra tokens.
func New(extra ...string) (*Normalizer, error) {
	vocabulary := make(map[string]struct{})
	for _, token := range DefaultVocabulary() {
		vocabulary[strings.ToLower(token)] = struct{}{}
	}
	for _, token := range extra {
		token = strings.ToLower(strings.TrimSpace(token))
		if token == "" {
			continue
		}
		vocabulary[token] = struct{}{}
	}

	classes := make([]*regexp.Regexp, 0, len(tokenClassPatterns))
	for _, pattern := range tokenClassPatterns {
		compiled, err := regexp.Compile(`(?i)` + pattern)
		if err != nil {
			return nil, fmt.Errorf("compile token class %q: %w", pattern, err)
		}
		classes = append(classes, compiled)
	}

	prePass := make([]*regexp.Regexp, 0, len(prePassPatterns))
	for _, pattern := range prePassPatterns {
		compiled, err := regexp.Compile(`(?i)` + pattern)
		if err != nil {
			return nil, fmt.Errorf("compile pre-pass pattern %q: %w", pattern, err)
		}
		prePass = append(prePass, compiled)
	}

	return &Normalizer{
		vocabulary: vocabulary,
		classes:    classes,
		prePass:    prePass,
		titler:     cases.Title(language.Und),
	}, nil
}

// MustNew is New for static vocabularies; it panics on compile failure.
func MustNew(extra ...string) *Normalizer {
	n, err := New(extra...)
	if err != nil {
		panic(err)
	}
	return n
}

// Normalize reduces a display name (no directory, extension optional) to a
// lowercase, separator-collapsed base title with release tags removed.
// Unrecognized tokens pass through untouched.
func (n *Normalizer) Normalize(name string) string {
	name = strings.TrimSuffix(name, filepath.Ext(name))

	for _, pattern := range n.prePass {
		name = pattern.ReplaceAllString(name, " ")
	}
	if releaseStyle.MatchString(name) {
		name = groupSuffix.ReplaceAllString(name, " ")
	}

	fields := separatorPattern.Split(name, -1)
	kept := make([]string, 0, len(fields))
	for _, field := range fields {
		field = punctPattern.ReplaceAllString(field, "")
		if field == "" {
			continue
		}
		if n.isReleaseToken(field) {
			continue
		}
		kept = append(kept, strings.ToLower(field))
	}
	return strings.Join(kept, " ")
}

// NormalizePath normalizes the base name of a full path.
func (n *Normalizer) NormalizePath(path string) string {
	return n.Normalize(filepath.Base(path))
}

// DisplayTitle renders a normalized title in title case for presentation.
func (n *Normalizer) DisplayTitle(normalized string) string {
	return n.titler.String(normalized)
}

func (n *Normalizer) isReleaseToken(token string) bool {
	if _, ok := n.vocabulary[strings.ToLower(token)]; ok {
		return true
	}
	for _, class := range n.classes {
		if class.MatchString(token) {
			return true
		}
	}
	return false
}
