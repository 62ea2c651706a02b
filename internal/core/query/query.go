package query

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"userapp/internal/core/domain"
)

// Params holds the raw list parameters as they arrive on the query string.
type Params struct {
	Limit         string `form:"limit"`
	PageNumber    string `form:"pageNumber"`
	OrderByKey    string `form:"orderByKey"`
	OrderByMethod string `form:"orderByMethod"`
	Search        string `form:"search"`
}

// Warning describes a parameter that was ignored or replaced by a default.
type Warning struct {
	Param   string `json:"param"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s=%q: %s", w.Param, w.Value, w.Message)
}

// BuildQuery turns raw parameters into an allow-listed PageQuery. It never
// fails: anything it cannot use is dropped and reported as a Warning.
func BuildQuery(params Params, searchable, sortable []string) (domain.PageQuery, []Warning) {
	q := domain.DefaultPageQuery()
	var warnings []Warning

	if limit, ok, w := parsePositive("limit", params.Limit, domain.DefaultLimit); ok {
		q.Limit = limit
	} else if w != nil {
		warnings = append(warnings, *w)
	}

	if page, ok, w := parsePositive("pageNumber", params.PageNumber, domain.DefaultPageNumber); ok {
		q.PageNumber = page
	} else if w != nil {
		warnings = append(warnings, *w)
	}

	if search := strings.TrimSpace(params.Search); search != "" {
		if len(searchable) == 0 {
			warnings = append(warnings, Warning{Param: "search", Value: params.Search, Message: "search is not supported for this resource"})
		} else {
			q.Search = search
		}
	}

	key := strings.TrimSpace(params.OrderByKey)
	rawMethod := strings.TrimSpace(params.OrderByMethod)

	method := domain.SortAsc
	methodOK := true
	if rawMethod != "" {
		method, methodOK = domain.ParseSortMethod(rawMethod)
		if !methodOK {
			warnings = append(warnings, Warning{Param: "orderByMethod", Value: params.OrderByMethod, Message: "must be ASC or DESC, sorting ignored"})
		}
	}

	if key != "" {
		column := CamelToSnake(key)

		switch {
		case !slices.Contains(sortable, column):
			warnings = append(warnings, Warning{Param: "orderByKey", Value: params.OrderByKey, Message: "not a sortable field, sorting ignored"})
		case methodOK:
			q.OrderByKey = column
			q.OrderByMethod = method
		}
	}

	return q, warnings
}

// parsePositive returns ok=false with a nil warning when the value is absent.
func parsePositive(param, raw string, fallback int) (int, bool, *Warning) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, false, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback, false, &Warning{
			Param:   param,
			Value:   raw,
			Message: fmt.Sprintf("must be a positive integer, using %d", fallback),
		}
	}

	return n, true, nil
}

// CamelToSnake converts userName to user_name. Runs of capitals are kept
// together so ID becomes id and userID becomes user_id.
func CamelToSnake(s string) string {
	runes := []rune(s)

	var b strings.Builder
	b.Grow(len(s) + 4)

	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

				if prev != '_' && (unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower)) {
					b.WriteByte('_')
				}
			}

			b.WriteRune(unicode.ToLower(r))
			continue
		}

		b.WriteRune(r)
	}

	return b.String()
}
