package docsearch

import "context"

// Hit is one documentation match.
type Hit struct {
	Title string
	URL   string
}

// Searcher finds the best documentation page for a search phrase. The
// boolean reports whether anything matched; an error means the search
// could not be performed at all.
type Searcher interface {
	Search(ctx context.Context, phrase string) (Hit, bool, error)
}
