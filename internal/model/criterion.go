package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CriterionType selects which listing field a criterion is matched against.
type CriterionType string

const (
	CriterionCompany  CriterionType = "company"
	CriterionLocation CriterionType = "location"
	CriterionKeyword  CriterionType = "keyword" // matches the title
)

// Criterion is one match rule within a subscription.
type Criterion struct {
	Type  CriterionType `json:"type" validate:"required,oneof=company location keyword"`
	Value string        `json:"value" validate:"required"`
}

// Field returns the listing field this criterion targets. Unknown types
// return ok=false.
func (c Criterion) Field(l Listing) (string, bool) {
	switch c.Type {
	case CriterionCompany:
		return l.Company, true
	case CriterionLocation:
		return l.Location, true
	case CriterionKeyword:
		return l.Title, true
	default:
		return "", false
	}
}

var validate = validator.New()

// DecodeCriteria parses the persisted JSON form of a criteria list and
// validates every entry. An empty or null document yields no criteria.
func DecodeCriteria(raw []byte) ([]Criterion, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var criteria []Criterion
	if err := json.Unmarshal(raw, &criteria); err != nil {
		return nil, fmt.Errorf("decode criteria: %w", err)
	}

	for i, c := range criteria {
		if err := validate.Struct(c); err != nil {
			return nil, fmt.Errorf("criterion %d: %s", i, describe(err))
		}
	}
	return criteria, nil
}

// EncodeCriteria returns the persisted JSON form of a criteria list.
func EncodeCriteria(criteria []Criterion) ([]byte, error) {
	if criteria == nil {
		criteria = []Criterion{}
	}
	return json.Marshal(criteria)
}

func describe(err error) string {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}
