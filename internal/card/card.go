package card

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ticketlens/ticketlens/internal/warehouse"
)

// Version is the card format version the helpdesk app understands.
const Version = "1.0.0"

const notAvailable = "(not available)"

type Card struct {
	Version    string      `json:"version"`
	Header     Header      `json:"header"`
	Components []Component `json:"components"`
	Message    string      `json:"message,omitempty"`
}

type Header struct {
	Title string `json:"title"`
}

type Component struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Value string `json:"value,omitempty"`
	URL   string `json:"url,omitempty"`
}

// New builds a card; a nil component list still marshals as an empty
// array, which the helpdesk app requires.
func New(title string, components []Component) Card {
	if components == nil {
		components = []Component{}
	}
	return Card{Version: Version, Header: Header{Title: title}, Components: components}
}

// NewMessage builds a component-less card carrying only a message.
func NewMessage(title, message string) Card {
	c := New(title, nil)
	c.Message = message
	return c
}

func Text(label, value string) Component {
	return Component{Type: "text", Label: label, Value: value}
}

func Link(label, rawURL string) Component {
	return Component{Type: "link", Label: label, URL: NormalizeURL(rawURL)}
}

// DocLink labels a related-documentation link.
func DocLink(title, url string) Component {
	return Link("Related Documentation: "+title, url)
}

// NormalizeURL keeps an existing http(s) scheme and defaults to https
// otherwise.
func NormalizeURL(rawURL string) string {
	lower := strings.ToLower(rawURL)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return rawURL
	}
	return "https://" + strings.TrimLeft(rawURL, "/")
}

// RowComponents renders the first row of a table, one component per
// column in column order. Labels are humanized column names; values
// that look like URLs, or contain one of the link hints, become link
// components; absent values render as "(not available)".
func RowComponents(table warehouse.Table, linkHints []string) []Component {
	if table.RowCount() == 0 {
		return nil
	}
	components := make([]Component, 0, len(table.Columns))
	for _, column := range table.Columns {
		label := humanizeLabel(column.Name)
		value := column.Values[0]
		if value == nil {
			components = append(components, Text(label, notAvailable))
			continue
		}
		rendered := formatValue(value)
		if looksLikeLink(rendered, linkHints) {
			components = append(components, Link(label, rendered))
			continue
		}
		components = append(components, Text(label, rendered))
	}
	return components
}

func humanizeLabel(name string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}

func formatValue(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case time.Time:
		return typed.Format(time.DateTime)
	case int64:
		return strconv.FormatInt(typed, 10)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(typed)
	default:
		return fmt.Sprintf("%v", typed)
	}
}

func looksLikeLink(value string, linkHints []string) bool {
	lower := strings.ToLower(value)
	if strings.HasPrefix(lower, "http") {
		return true
	}
	for _, hint := range linkHints {
		if hint != "" && strings.Contains(lower, strings.ToLower(hint)) {
			return true
		}
	}
	return false
}
