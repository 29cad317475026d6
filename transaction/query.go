package transaction

import (
	"net/url"
	"strings"
)

// Filter selects transactions on the remote. Every field is optional.
type Filter struct {
	StartDate string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	Type      string `json:"type" validate:"omitempty,oneof=income expense"`
	Category  string `json:"category"`
	ID        string `json:"id"`
}

// Param is a single query field.
type Param struct {
	Key   string
	Value string
}

// Query is the normalized form of a Filter: only supplied fields, in a fixed order.
type Query []Param

// BuildQuery keeps every non-empty filter field as-is, in the order
// startDate, endDate, type, category, id. Values are not validated.
func BuildQuery(f Filter) Query {
	fields := [...]Param{
		{Key: "startDate", Value: f.StartDate},
		{Key: "endDate", Value: f.EndDate},
		{Key: "type", Value: f.Type},
		{Key: "category", Value: f.Category},
		{Key: "id", Value: f.ID},
	}

	q := make(Query, 0, len(fields))
	for _, p := range fields {
		if p.Value == "" {
			continue
		}
		q = append(q, p)
	}
	return q
}

// Encode renders the query string preserving field order.
func (q Query) Encode() string {
	var b strings.Builder
	for i, p := range q {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}
