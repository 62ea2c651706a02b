package query

import (
	"fmt"
	"slices"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"userapp/internal/core/domain"
)

const likeEscape = '!'

// Spec is an immutable description of a filtered, ordered, paginated read.
// Every With method returns a modified copy.
type Spec struct {
	searchable  []string
	search      string
	orderKey    string
	orderMethod domain.SortMethod
	limit       int
	page        int
}

func NewSpec(searchable []string) Spec {
	return Spec{
		searchable:  slices.Clone(searchable),
		orderMethod: domain.SortAsc,
		limit:       domain.DefaultLimit,
		page:        domain.DefaultPageNumber,
	}
}

// FromPageQuery builds the Spec for an already allow-listed PageQuery.
func FromPageQuery(q domain.PageQuery, searchable []string) Spec {
	return NewSpec(searchable).
		WithSearch(q.Search).
		OrderBy(q.OrderByKey, q.OrderByMethod).
		Paginate(q.Limit, q.PageNumber)
}

func (s Spec) WithSearch(term string) Spec {
	s.search = strings.TrimSpace(term)
	return s
}

// OrderBy expects a column that was already checked against the sortable list.
func (s Spec) OrderBy(column string, method domain.SortMethod) Spec {
	s.orderKey = column
	s.orderMethod = method
	if s.orderMethod != domain.SortDesc {
		s.orderMethod = domain.SortAsc
	}

	return s
}

func (s Spec) Paginate(limit, page int) Spec {
	if limit <= 0 {
		limit = domain.DefaultLimit
	}

	if page <= 0 {
		page = domain.DefaultPageNumber
	}

	s.limit = limit
	s.page = page
	return s
}

func (s Spec) Search() string { return s.search }
func (s Spec) Limit() int     { return s.limit }
func (s Spec) PageNumber() int {
	return s.page
}

func (s Spec) Offset() int {
	return s.PageQuery().Offset()
}

// Filter returns the search predicate, or nil when there is nothing to match.
func (s Spec) Filter() sq.Sqlizer {
	if s.search == "" || len(s.searchable) == 0 {
		return nil
	}

	pattern := "%" + EscapeLike(strings.ToLower(s.search)) + "%"

	or := make(sq.Or, 0, len(s.searchable))
	for _, column := range s.searchable {
		or = append(or, sq.Expr(fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '%c'", column, likeEscape), pattern))
	}

	return or
}

// OrderClauses always ends with created_at and id so pages are stable.
func (s Spec) OrderClauses() []string {
	clauses := make([]string, 0, 3)

	if s.orderKey != "" {
		clauses = append(clauses, fmt.Sprintf("%s %s", s.orderKey, s.orderMethod))
	}

	if s.orderKey != domain.ColumnCreatedAt {
		clauses = append(clauses, domain.ColumnCreatedAt+" ASC")
	}

	if s.orderKey != domain.ColumnID {
		clauses = append(clauses, domain.ColumnID+" ASC")
	}

	return clauses
}

// ApplyFilter adds only the search predicate, as needed for counting.
func (s Spec) ApplyFilter(b sq.SelectBuilder) sq.SelectBuilder {
	if filter := s.Filter(); filter != nil {
		b = b.Where(filter)
	}

	return b
}

func (s Spec) Apply(b sq.SelectBuilder) sq.SelectBuilder {
	return s.ApplyFilter(b).
		OrderBy(s.OrderClauses()...).
		Limit(uint64(s.limit)).
		Offset(uint64(s.Offset()))
}

func (s Spec) PageQuery() domain.PageQuery {
	return domain.PageQuery{
		Limit:         s.limit,
		PageNumber:    s.page,
		OrderByKey:    s.orderKey,
		OrderByMethod: s.orderMethod,
		Search:        s.search,
	}
}

// EscapeLike escapes LIKE wildcards using '!' as the escape character, which
// every supported store accepts without dialect-specific quoting.
func EscapeLike(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(s)
}
