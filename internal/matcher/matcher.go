package matcher

import (
	"strings"
	"time"

	"github.com/amishk599/jobwatch/internal/model"
)

// Match returns the listings that are new for sub and satisfy at least one
// of its criteria. A listing is new only if it was posted strictly after the
// subscription's watermark. Matching is case-insensitive substring
// containment. Input order is preserved.
func Match(sub model.Subscription, listings []model.Listing) []model.Listing {
	if len(sub.Criteria) == 0 {
		return nil
	}

	var matched []model.Listing
	for _, l := range listings {
		if !l.PostedAt.After(sub.LastNotified) {
			continue
		}
		if MatchAny(sub.Criteria, l) {
			matched = append(matched, l)
		}
	}
	return matched
}

// MatchAny reports whether any criterion matches the listing. An empty
// criteria list matches nothing.
func MatchAny(criteria []model.Criterion, l model.Listing) bool {
	for _, c := range criteria {
		field, ok := c.Field(l)
		if !ok || c.Value == "" {
			continue
		}
		if strings.Contains(strings.ToLower(field), strings.ToLower(c.Value)) {
			return true
		}
	}
	return false
}

// NewSince returns the listings posted strictly after the watermark,
// regardless of criteria.
func NewSince(listings []model.Listing, watermark time.Time) []model.Listing {
	var fresh []model.Listing
	for _, l := range listings {
		if l.PostedAt.After(watermark) {
			fresh = append(fresh, l)
		}
	}
	return fresh
}
