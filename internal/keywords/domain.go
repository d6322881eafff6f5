package keywords

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"regexp"
	"sort"
	"strings"
)

// Vocabulary is an optional operator-curated term list used to rank
// search phrases. Source-file entries are either plain strings or
// [term, score] pairs; scores are ignored and stopword-bearing terms
// are dropped at load time.
type Vocabulary struct {
	Keywords map[string]struct{}
	Phrases  map[string]struct{}
}

func (v Vocabulary) Empty() bool {
	return len(v.Keywords) == 0 && len(v.Phrases) == 0
}

func (v Vocabulary) contains(term string) bool {
	if _, ok := v.Keywords[term]; ok {
		return true
	}
	_, ok := v.Phrases[term]
	return ok
}

func LoadVocabulary(path string) (Vocabulary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("read vocabulary: %w", err)
	}
	var parsed struct {
		Keywords []any `json:"keywords"`
		Phrases  []any `json:"phrases"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Vocabulary{}, fmt.Errorf("parse vocabulary: %w", err)
	}

	vocab := Vocabulary{
		Keywords: make(map[string]struct{}),
		Phrases:  make(map[string]struct{}),
	}
	for _, entry := range parsed.Keywords {
		term, ok := vocabularyTerm(entry)
		if !ok || isStopword(term) {
			continue
		}
		vocab.Keywords[term] = struct{}{}
	}
	for _, entry := range parsed.Phrases {
		term, ok := vocabularyTerm(entry)
		if !ok || phraseHasStopword(term) {
			continue
		}
		vocab.Phrases[term] = struct{}{}
	}
	return vocab, nil
}

func vocabularyTerm(entry any) (string, bool) {
	switch typed := entry.(type) {
	case string:
		return typed, true
	case []any:
		if len(typed) > 0 {
			if term, ok := typed[0].(string); ok {
				return term, true
			}
		}
	}
	return "", false
}

func phraseHasStopword(phrase string) bool {
	for _, word := range strings.Fields(phrase) {
		if isStopword(word) {
			return true
		}
	}
	return false
}

type WeightedPhrase struct {
	Phrase string
	Weight float64
}

// Doc-style tokens: two or more word characters, no stopword filter.
var docTokenPattern = regexp.MustCompile(`\w\w+`)

// WeightedPhrases ranks vocabulary terms by their frequency in the
// text, with weights L2-normalized over the matched terms, descending.
// Ties break lexicographically so the ranking is stable.
func WeightedPhrases(text string, vocab Vocabulary) []WeightedPhrase {
	tokens := docTokenPattern.FindAllString(strings.ToLower(text), -1)
	counts := make(map[string]int)
	for n := 1; n <= 3; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			term := strings.Join(tokens[i:i+n], " ")
			if vocab.contains(term) {
				counts[term]++
			}
		}
	}
	if len(counts) == 0 {
		return nil
	}

	var norm float64
	for _, count := range counts {
		norm += float64(count * count)
	}
	norm = math.Sqrt(norm)

	phrases := make([]WeightedPhrase, 0, len(counts))
	for term, count := range counts {
		phrases = append(phrases, WeightedPhrase{Phrase: term, Weight: float64(count) / norm})
	}
	sort.Slice(phrases, func(i, j int) bool {
		if phrases[i].Weight != phrases[j].Weight {
			return phrases[i].Weight > phrases[j].Weight
		}
		return phrases[i].Phrase < phrases[j].Phrase
	})
	return phrases
}
