package keywords

import "strings"

// Stopword list tuned for support-ticket text: the usual English
// function words plus greeting and correspondence filler.
var stopwords = stopwordSet(`
a about above after again am an and are as at be because been before
being below but by can did do does doing down further had has have
having he her here hers herself him himself his how i ideally if in is
it its itself just me my myself no nor not of on or other our ours
ourselves out own same she should so some such than that the their
theirs them themselves then there these they this those through to too
under until up very was we were what when where which while who whom
why will with you your yours yourself yourselves please thanks hi hello
regards note see ask wanted should could would know let make get new
set use work issue show think look found question want need help
appreciate attached sent send sending replied reply replying regards
sincerely best
`)

func stopwordSet(words string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range strings.Fields(words) {
		set[word] = struct{}{}
	}
	return set
}

func isStopword(word string) bool {
	_, ok := stopwords[word]
	return ok
}
