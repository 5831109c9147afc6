package ui

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
)

var planKeywords = []string{
	"ASC", "DESC", "NULLS", "FIRST", "LAST", "CROSS", "LEFT", "RIGHT", "FULL",
	"SEMI", "ANTI", "UNION", "INTERSECT", "EXCEPT", "ALL", "DISTINCT", "AND",
	"OR", "NOT", "NULL", "IS", "IN", "LIKE", "ILIKE", "GLOB", "CASE", "WHEN",
	"THEN", "ELSE", "END", "CAST", "TRY_CAST", "PARTITION", "BY", "ORDER",
	"ROWS", "BETWEEN", "PRECEDING", "FOLLOWING", "CURRENT", "ROW", "UNBOUNDED",
}

// PlanHighlighter colours EXPLAIN output: the operator at the start of each
// line, plan keywords, literals and numbers.
type PlanHighlighter struct {
	keywords      map[string]bool
	operatorStyle lipgloss.Style
	keywordStyle  lipgloss.Style
	stringStyle   lipgloss.Style
	numberStyle   lipgloss.Style
	treeStyle     lipgloss.Style
}

func NewPlanHighlighter() *PlanHighlighter {
	h := &PlanHighlighter{keywords: make(map[string]bool, len(planKeywords))}
	for _, kw := range planKeywords {
		h.keywords[kw] = true
	}

	h.operatorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#8BE9FD")).
		Bold(true)
	h.keywordStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF79C6")).
		Bold(true)
	h.stringStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F1FA8C"))
	h.numberStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#BD93F9"))
	h.treeStyle = lipgloss.NewStyle().
		Foreground(bgLight)
	return h
}

// Highlight renders every line of an Explain tree.
func (h *PlanHighlighter) Highlight(plan string) string {
	lines := strings.Split(plan, "\n")
	for i, line := range lines {
		lines[i] = h.line(line)
	}
	return strings.Join(lines, "\n")
}

func (h *PlanHighlighter) line(line string) string {
	body := strings.TrimLeft(line, treeRunes)
	prefix := line[:len(line)-len(body)]

	name, rest := body, ""
	if open := strings.IndexByte(body, '('); open >= 0 {
		name, rest = body[:open], body[open:]
	}

	words := strings.Fields(rest)
	for i, w := range words {
		clean := strings.Trim(w, "(),")
		switch {
		case h.keywords[strings.ToUpper(clean)]:
			words[i] = strings.Replace(w, clean, h.keywordStyle.Render(clean), 1)
		case strings.HasPrefix(clean, "'") && strings.HasSuffix(clean, "'") && len(clean) > 1:
			words[i] = strings.Replace(w, clean, h.stringStyle.Render(clean), 1)
		case isNumeric(clean):
			words[i] = strings.Replace(w, clean, h.numberStyle.Render(clean), 1)
		}
	}

	out := h.treeStyle.Render(prefix) + h.operatorStyle.Render(name)
	if len(words) > 0 {
		if strings.HasPrefix(rest, " ") {
			out += " "
		}
		out += strings.Join(words, " ")
	}
	return out
}

// isNumeric checks if a string represents a number
func isNumeric(s string) bool {
	digits := 0
	for i, c := range s {
		switch {
		case unicode.IsDigit(c):
			digits++
		case c == '.', c == '-' && i == 0:
		default:
			return false
		}
	}
	return digits > 0
}
