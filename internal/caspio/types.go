package caspio

import (
	"net/url"
	"strconv"
	"strings"
)

// Config locates a Caspio account. ClientID/ClientSecret take precedence over
// RefreshToken, which takes precedence over a bare AccessToken.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	AccessToken  string
	RefreshToken string
}

// TokenResponse is the /oauth/token answer.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

type errorResponse struct {
	Code    string `json:"Code"`
	Message string `json:"Message"`
}

type resultEnvelope[T any] struct {
	Result []T `json:"Result"`
}

type affectedResponse struct {
	RecordsAffected int `json:"RecordsAffected"`
}

// Query maps to Caspio's q.* parameters.
type Query struct {
	Select     string
	Where      string
	GroupBy    string
	OrderBy    string
	Distinct   bool
	PageSize   int
	PageNumber int
}

// Values encodes the query for the records endpoint.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Select != "" {
		v.Set("q.select", q.Select)
	}
	if q.Where != "" {
		v.Set("q.where", q.Where)
	}
	if q.GroupBy != "" {
		v.Set("q.groupBy", q.GroupBy)
	}
	if q.OrderBy != "" {
		v.Set("q.orderBy", q.OrderBy)
	}
	if q.Distinct {
		v.Set("q.distinct", "true")
	}
	if q.PageSize > 0 {
		v.Set("q.pageSize", strconv.Itoa(q.PageSize))
	}
	if q.PageNumber > 0 {
		v.Set("q.pageNumber", strconv.Itoa(q.PageNumber))
	}
	return v
}

// Quote escapes a value for use inside a q.where string literal.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Where joins non-empty clauses with AND.
func Where(clauses ...string) string {
	var parts []string
	for _, c := range clauses {
		if c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " AND ")
}

// Eq renders "field = 'value'", or "" when value is empty.
func Eq(field, value string) string {
	if value == "" {
		return ""
	}
	return field + " = " + Quote(value)
}
