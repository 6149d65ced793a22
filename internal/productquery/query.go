// Package productquery builds the parameterized SQL behind product listing,
// search and pagination.
package productquery

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type SortKey string

const (
	SortPriceAsc   SortKey = "price_asc"
	SortPriceDesc  SortKey = "price_desc"
	SortNameAsc    SortKey = "name_asc"
	SortNameDesc   SortKey = "name_desc"
	SortDateDesc   SortKey = "date_desc"
	SortDateAsc    SortKey = "date_asc"
	SortRatingDesc SortKey = "rating_desc"
	SortRatingAsc  SortKey = "rating_asc"

	DefaultSort = SortDateDesc
)

// orderBy is the only source of ORDER BY text. Each entry ends with a
// product_id tiebreaker so pages are stable.
var orderBy = map[SortKey]string{
	SortPriceAsc:   "p.price ASC, p.product_id ASC",
	SortPriceDesc:  "p.price DESC, p.product_id DESC",
	SortNameAsc:    "p.product_name ASC, p.product_id ASC",
	SortNameDesc:   "p.product_name DESC, p.product_id DESC",
	SortDateDesc:   "p.created_at DESC, p.product_id DESC",
	SortDateAsc:    "p.created_at ASC, p.product_id ASC",
	SortRatingDesc: "p.average_rating DESC, p.total_ratings DESC, p.product_id DESC",
	SortRatingAsc:  "p.average_rating ASC, p.total_ratings ASC, p.product_id ASC",
}

// ParseSortKey maps untrusted input to a known sort key, falling back to DefaultSort.
func ParseSortKey(s string) SortKey {
	k := SortKey(strings.TrimSpace(s))
	if _, ok := orderBy[k]; ok {
		return k
	}
	return DefaultSort
}

func (k SortKey) Validate() error {
	if _, ok := orderBy[k]; !ok {
		return fmt.Errorf("unknown sort key %q", string(k))
	}
	return nil
}

// OrderBy returns the ORDER BY fragment for k, using DefaultSort for unknown keys.
func (k SortKey) OrderBy() string {
	if clause, ok := orderBy[k]; ok {
		return clause
	}
	return orderBy[DefaultSort]
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

type Filter struct {
	ProductID  *int64
	CategoryID *int64
	SearchTerm string
}

type Query struct {
	SQL  string
	Args []any
}

const (
	selectColumns = `p.product_id, p.product_name, p.description, p.price, p.category_id, c.category_name,
	p.stock_available, p.file_path, p.preview_path, p.cover_image_path, p.average_rating, p.total_ratings,
	p.created_at, p.updated_at`

	fromClause = `FROM products p JOIN categories c ON c.category_id = p.category_id`
)

// SelectColumns lists the columns every product query scans, in order.
func SelectColumns() string {
	return selectColumns
}

// NormalizePage applies the defaults for page < 1 and limit < 1 and caps
// limit at MaxLimit.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// Offset returns (page-1)*limit for normalized input, saturating at the
// largest multiple of limit instead of overflowing.
func Offset(page, limit int) int {
	page, limit = NormalizePage(page, limit)
	if page-1 > math.MaxInt/limit {
		return math.MaxInt / limit * limit
	}
	return (page - 1) * limit
}

// Build returns the data query and its count query. A ProductID filter scopes
// the data query to that product and ignores everything else, in which case
// the count query is nil.
func Build(f Filter, sort SortKey, page, limit int) (Query, *Query) {
	if f.ProductID != nil {
		return Query{
			SQL:  "SELECT " + selectColumns + " " + fromClause + " WHERE p.product_id = $1",
			Args: []any{*f.ProductID},
		}, nil
	}

	var (
		conds []string
		args  []any
	)
	placeholder := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.CategoryID != nil {
		conds = append(conds, "p.category_id = "+placeholder(*f.CategoryID))
	}

	if term := strings.TrimSpace(f.SearchTerm); term != "" {
		ph := placeholder("%" + escapeLike(term) + "%")
		conds = append(conds, fmt.Sprintf(
			"(p.product_name ILIKE %[1]s OR p.description ILIKE %[1]s OR c.category_name ILIKE %[1]s)", ph))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	count := &Query{
		SQL:  "SELECT COUNT(*) " + fromClause + where,
		Args: append([]any(nil), args...),
	}

	offset := Offset(page, limit)
	_, limit = NormalizePage(page, limit)

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(selectColumns)
	sb.WriteString(" ")
	sb.WriteString(fromClause)
	sb.WriteString(where)
	sb.WriteString(" ORDER BY ")
	sb.WriteString(sort.OrderBy())
	sb.WriteString(" LIMIT ")
	sb.WriteString(placeholder(limit))
	sb.WriteString(" OFFSET ")
	sb.WriteString(placeholder(offset))

	return Query{SQL: sb.String(), Args: args}, count
}

// TotalPages is ceil(totalItems/limit). An empty result has one page when
// the first page is requested and none otherwise.
func TotalPages(totalItems int64, page, limit int) int {
	page, limit = NormalizePage(page, limit)
	if totalItems <= 0 {
		if page == 1 {
			return 1
		}
		return 0
	}
	return int((totalItems + int64(limit) - 1) / int64(limit))
}

// OutOfRange reports whether page lies past the last page of a non-empty result.
func OutOfRange(page int, totalItems int64, limit int) bool {
	return totalItems > 0 && page > TotalPages(totalItems, page, limit)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes term match literally inside an ILIKE pattern.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
