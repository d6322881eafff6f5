package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ticketlens/ticketlens/internal/card"
	"github.com/ticketlens/ticketlens/internal/keywords"
	"github.com/ticketlens/ticketlens/internal/tickets"
	"github.com/ticketlens/ticketlens/internal/warehouse/omni"
)

func handleWebhook(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("request_type") {
	case "verify":
		code := r.URL.Query().Get("code")
		deps.Logger.InfoContext(r.Context(), "verification request", "code", code)
		writeJSON(w, http.StatusOK, map[string]any{"code": code})
	case "fetch_data":
		handleFetchData(deps, w, r)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid request_type"})
	}
}

func handleFetchData(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := r.URL.Query().Get("requester_email")
	issueID := r.URL.Query().Get("issue_id")
	deps.Logger.InfoContext(ctx, "fetching account data", "requester_email", accountID, "issue_id", issueID)

	if deps.Engine == nil || deps.Template == nil {
		writeJSON(w, http.StatusInternalServerError, card.NewMessage("Error", "warehouse is not configured"))
		return
	}

	docLinks := collectDocLinks(ctx, deps, issueID)

	document, err := deps.Template.Bind(accountID)
	if err != nil {
		deps.Logger.ErrorContext(ctx, "query template binding failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, card.NewMessage("Error", err.Error()))
		return
	}

	table, err := deps.Engine.Acquire(ctx, document)
	if err != nil {
		deps.Logger.ErrorContext(ctx, "account data acquisition failed", "requester_email", accountID, "error", err)
		status := http.StatusInternalServerError
		var timeoutErr *omni.PollTimeoutError
		if errors.As(err, &timeoutErr) {
			status = http.StatusGatewayTimeout
		}
		writeJSON(w, status, card.NewMessage("Error", err.Error()))
		return
	}

	if table.RowCount() == 0 {
		deps.Logger.WarnContext(ctx, "no account data found", "requester_email", accountID)
		message := fmt.Sprintf("No records found for account_id=%s", accountID)
		writeJSON(w, http.StatusNotFound, card.NewMessage("No Data Found", message))
		return
	}

	components := append(docLinks, card.RowComponents(table, deps.LinkHints)...)
	writeJSON(w, http.StatusOK, card.New("Account Info", components))
}

// collectDocLinks turns the ticket body into documentation link components.
// Every failure along the way is logged and degrades to "no links": a
// helpdesk or search outage must not block the account card.
func collectDocLinks(ctx context.Context, deps Dependencies, issueID string) []card.Component {
	if issueID == "" {
		deps.Logger.WarnContext(ctx, "no issue_id in webhook payload")
		return nil
	}
	if deps.Tickets == nil || deps.DocSearch == nil {
		return nil
	}

	bodyHTML, err := deps.Tickets.IssueBodyHTML(ctx, issueID)
	if err != nil {
		deps.Logger.WarnContext(ctx, "ticket body fetch failed", "issue_id", issueID, "error", err)
		return nil
	}
	if bodyHTML == "" {
		deps.Logger.InfoContext(ctx, "issue has no body, skipping docs search", "issue_id", issueID)
		return nil
	}

	previewChars := deps.PreviewChars
	if previewChars <= 0 {
		previewChars = 200
	}
	text := tickets.Preview(tickets.ExtractText(bodyHTML), previewChars)
	phrases := rankedPhrases(text, deps.Vocabulary)

	maxLinks := deps.MaxDocLinks
	if maxLinks <= 0 {
		maxLinks = 3
	}
	seen := make(map[string]struct{})
	links := make([]card.Component, 0, maxLinks)
	for _, phrase := range phrases {
		if len(links) >= maxLinks {
			break
		}
		hit, ok, err := deps.DocSearch.Search(ctx, phrase)
		if err != nil {
			deps.Logger.WarnContext(ctx, "docs search failed", "phrase", phrase, "error", err)
			continue
		}
		if !ok {
			continue
		}
		if _, dup := seen[hit.URL]; dup {
			continue
		}
		seen[hit.URL] = struct{}{}
		links = append(links, card.DocLink(hit.Title, hit.URL))
	}
	deps.Logger.InfoContext(ctx, "docs search finished", "issue_id", issueID, "links", len(links))
	return links
}

// rankedPhrases prefers the vocabulary-weighted ranking when a domain
// vocabulary is loaded and falls back to plain n-gram extraction.
func rankedPhrases(text string, vocab keywords.Vocabulary) []string {
	if vocab.Empty() {
		return keywords.Phrases(text)
	}
	weighted := keywords.WeightedPhrases(text, vocab)
	phrases := make([]string, 0, len(weighted))
	for _, entry := range weighted {
		phrases = append(phrases, entry.Phrase)
	}
	return phrases
}
