package matcher

import (
	"testing"
	"time"

	"github.com/amishk599/jobwatch/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func listing(title, company, location string, posted time.Time) model.Listing {
	return model.Listing{Title: title, Company: company, Location: location, Link: "https://jobs.example.com/" + title, PostedAt: posted}
}

func TestMatch(t *testing.T) {
	watermark := day(2024, 1, 1)
	after := day(2024, 1, 2)

	tests := []struct {
		name      string
		criteria  []model.Criterion
		listings  []model.Listing
		wantTitle []string
	}{
		{
			name:     "company match excludes old posting",
			criteria: []model.Criterion{{Type: model.CriterionCompany, Value: "acme"}},
			listings: []model.Listing{
				listing("Engineer", "Acme Corp", "Remote", after),
				listing("Old Engineer", "Acme Corp", "Remote", day(2023, 12, 31)),
			},
			wantTitle: []string{"Engineer"},
		},
		{
			name:      "posting at the watermark is not new",
			criteria:  []model.Criterion{{Type: model.CriterionCompany, Value: "acme"}},
			listings:  []model.Listing{listing("Engineer", "Acme", "Remote", watermark)},
			wantTitle: nil,
		},
		{
			name:      "empty criteria never match",
			criteria:  nil,
			listings:  []model.Listing{listing("Engineer", "Acme", "Remote", after)},
			wantTitle: nil,
		},
		{
			name:     "keyword targets title case-insensitively",
			criteria: []model.Criterion{{Type: model.CriterionKeyword, Value: "GOLANG"}},
			listings: []model.Listing{
				listing("Senior Golang Developer", "Initech", "NYC", after),
				listing("Java Developer", "Golang Inc", "NYC", after),
			},
			wantTitle: []string{"Senior Golang Developer"},
		},
		{
			name:     "substring not equality",
			criteria: []model.Criterion{{Type: model.CriterionLocation, Value: "berlin"}},
			listings: []model.Listing{
				listing("A", "X", "Berlin, Germany", after),
				listing("B", "X", "Munich", after),
			},
			wantTitle: []string{"A"},
		},
		{
			name: "any criterion is enough and order is preserved",
			criteria: []model.Criterion{
				{Type: model.CriterionLocation, Value: "remote"},
				{Type: model.CriterionCompany, Value: "globex"},
			},
			listings: []model.Listing{
				listing("C", "Globex", "Springfield", after),
				listing("D", "Initech", "Office", after),
				listing("E", "Initech", "Remote - EU", after),
			},
			wantTitle: []string{"C", "E"},
		},
		{
			name:      "unknown criterion type never matches",
			criteria:  []model.Criterion{{Type: "salary", Value: "a"}},
			listings:  []model.Listing{listing("Analyst", "Acme", "Remote", after)},
			wantTitle: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := model.Subscription{ID: "s1", Criteria: tt.criteria, LastNotified: watermark}
			got := Match(sub, tt.listings)
			if len(got) != len(tt.wantTitle) {
				t.Fatalf("Match() returned %d listings, want %d", len(got), len(tt.wantTitle))
			}
			for i, l := range got {
				if l.Title != tt.wantTitle[i] {
					t.Errorf("match %d = %q, want %q", i, l.Title, tt.wantTitle[i])
				}
			}
		})
	}
}

func TestNewSince(t *testing.T) {
	listings := []model.Listing{
		listing("old", "X", "Y", day(2024, 1, 1)),
		listing("new", "X", "Y", day(2024, 1, 3)),
	}
	got := NewSince(listings, day(2024, 1, 1))
	if len(got) != 1 || got[0].Title != "new" {
		t.Errorf("NewSince() = %+v, want only the new listing", got)
	}
}
