package tickets

import "context"

// Source fetches the HTML body of a support issue.
type Source interface {
	IssueBodyHTML(ctx context.Context, issueID string) (string, error)
}
