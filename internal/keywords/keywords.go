package keywords

import (
	"regexp"
	"strings"
)

const minWordLength = 3

var wordPattern = regexp.MustCompile(`\w+`)

// Extract returns the lowercase word tokens of text, dropping stopwords
// and words shorter than three characters, in occurrence order.
func Extract(text string) []string {
	tokens := wordPattern.FindAllString(strings.ToLower(text), -1)
	kept := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if len(token) < minWordLength || isStopword(token) {
			continue
		}
		kept = append(kept, token)
	}
	return kept
}

// Phrases builds search phrases from the text's keywords: trigrams,
// then bigrams, then single keywords. Phrases are deduplicated, longest
// first, keeping first-occurrence order within each size.
func Phrases(text string) []string {
	kept := Extract(text)
	seen := make(map[string]struct{})
	var phrases []string
	for _, n := range []int{3, 2, 1} {
		for i := 0; i+n <= len(kept); i++ {
			phrase := strings.Join(kept[i:i+n], " ")
			if _, ok := seen[phrase]; ok {
				continue
			}
			seen[phrase] = struct{}{}
			phrases = append(phrases, phrase)
		}
	}
	return phrases
}
