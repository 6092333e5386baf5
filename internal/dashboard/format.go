package dashboard

import (
	"strings"
	"time"
)

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// FormatDate renders a vendor timestamp as "Jan 2, 2006". Missing input
// renders as "—" and unparseable input as "Invalid Date".
func FormatDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "—"
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("Jan 2, 2006")
		}
	}
	return "Invalid Date"
}
