package tools

import (
	"strings"
	"time"
)

var dateLayouts = []string{time.DateOnly, time.RFC3339}

// ParseDate 接受 2006-01-02 或 RFC3339
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Today 当天零点（UTC）
func Today() time.Time {
	y, m, d := time.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
