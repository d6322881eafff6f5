package warehouse

import (
	"encoding/json"
	"fmt"
	"os"
)

// Template is an operator-authored query document with a single account
// filter that gets bound per request.
type Template struct {
	document    Request
	filterField string
}

func LoadTemplate(path string, filterField string) (*Template, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read query template: %w", err)
	}
	var document Request
	if err := json.Unmarshal(raw, &document); err != nil {
		return nil, fmt.Errorf("parse query template: %w", err)
	}
	return NewTemplate(document, filterField)
}

func NewTemplate(document Request, filterField string) (*Template, error) {
	if filterField == "" {
		return nil, fmt.Errorf("filter field is required")
	}
	if _, err := accountFilter(document, filterField); err != nil {
		return nil, err
	}
	return &Template{document: document, filterField: filterField}, nil
}

// Bind deep-copies the template and pins the account filter to the given
// account id. The template itself is never mutated.
func (t *Template) Bind(accountID string) (Request, error) {
	raw, err := json.Marshal(t.document)
	if err != nil {
		return nil, fmt.Errorf("copy query template: %w", err)
	}
	var bound Request
	if err := json.Unmarshal(raw, &bound); err != nil {
		return nil, fmt.Errorf("copy query template: %w", err)
	}
	filter, err := accountFilter(bound, t.filterField)
	if err != nil {
		return nil, err
	}
	filter["values"] = []any{accountID}
	return bound, nil
}

func accountFilter(document Request, filterField string) (map[string]any, error) {
	query, ok := document["query"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("query template: missing query object")
	}
	filters, ok := query["filters"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("query template: missing query.filters object")
	}
	filter, ok := filters[filterField].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("query template: missing filter %q", filterField)
	}
	return filter, nil
}
