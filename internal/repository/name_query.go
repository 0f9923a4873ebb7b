package repository

import "strings"

// NameQuery selects how a free-text name is matched against customers.
// It is either SingleToken or TwoTokens; each maps to its own static SQL
// statement.
type NameQuery interface {
	args() []any
	sql() string
}

// SingleToken matches customers whose first OR last name equals Name,
// ignoring case.
type SingleToken struct {
	Name string
}

// TwoTokens matches customers whose first name equals First AND whose last
// name equals Last, ignoring case.
type TwoTokens struct {
	First string
	Last  string
}

const (
	qCustomersByEitherName = customerSelect + `
		WHERE LOWER(first_name) = LOWER(?) OR LOWER(last_name) = LOWER(?)`
	qCustomersByFullName = customerSelect + `
		WHERE LOWER(first_name) = LOWER(?) AND LOWER(last_name) = LOWER(?)`
)

func (q SingleToken) sql() string { return qCustomersByEitherName }
func (q SingleToken) args() []any { return []any{q.Name, q.Name} }
func (q TwoTokens) sql() string { return qCustomersByFullName }
func (q TwoTokens) args() []any { return []any{q.First, q.Last} }

// ParseNameQuery splits name on single spaces.  One token gives a
// SingleToken, two give TwoTokens; anything longer is rejected with
// ok=false.  Consecutive spaces produce empty tokens and count toward the
// limit.
func ParseNameQuery(name string) (q NameQuery, ok bool) {
	parts := strings.Split(name, " ")
	switch len(parts) {
	case 1:
		return SingleToken{Name: parts[0]}, true
	case 2:
		return TwoTokens{First: parts[0], Last: parts[1]}, true
	default:
		return nil, false
	}
}
