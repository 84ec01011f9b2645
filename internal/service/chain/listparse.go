package chain

import (
	"regexp"
	"strings"

	"github.com/sandevgo/factbot/internal/core"
)

var numberedItem = regexp.MustCompile(`^\d+[.)]\s+(\S.*)$`)

var noneMarkers = map[string]struct{}{
	"none":         {},
	"n/a":          {},
	"[]":           {},
	"no new facts": {},
	"no facts":     {},
}

// ParseNumberedList reads model output of the form "1. item" / "2) item".
// Blank output or a lone none-marker yields an empty list. Any other line
// shape fails with core.ErrParse, so partial lists are never returned.
func ParseNumberedList(output string) ([]string, error) {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" || isNoneMarker(trimmed) {
		return []string{}, nil
	}

	var items []string
	for i, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		m := numberedItem.FindStringSubmatch(line)
		if m == nil {
			return nil, core.ParseError("line %d is not a numbered item: %q", i+1, line)
		}
		items = append(items, strings.TrimSpace(m[1]))
	}
	return items, nil
}

func isNoneMarker(s string) bool {
	s = strings.ToLower(strings.TrimRight(s, ". "))
	_, ok := noneMarkers[s]
	return ok
}
