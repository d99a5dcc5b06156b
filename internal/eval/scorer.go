// Package eval scores baseline vs self-refined outputs for
// summarization and code-generation tasks.
package eval

import "strings"

// bigramSize is the n-gram width used by the summarization scorer.
const bigramSize = 2

// OverlapRecall computes lexical n-gram recall of candidate against
// reference, normalized to [0,1]. Tokenization is lowercased whitespace
// splitting; the metric is fully deterministic for fixed inputs.
func OverlapRecall(candidate, reference string, n int) float64 {
	if n < 1 {
		n = 1
	}
	ref := ngrams(tokenize(reference), n)
	if len(ref) == 0 {
		return 0
	}
	cand := ngrams(tokenize(candidate), n)

	matched := 0
	for g := range ref {
		if _, ok := cand[g]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(ref))
}

func tokenize(s string) []string {
	return strings.Fields(strings.ToLower(s))
}

func ngrams(tokens []string, n int) map[string]struct{} {
	out := make(map[string]struct{})
	for i := 0; i+n <= len(tokens); i++ {
		out[strings.Join(tokens[i:i+n], " ")] = struct{}{}
	}
	return out
}
