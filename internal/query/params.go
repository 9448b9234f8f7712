package query

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// ListParams carries pagination, ordering, and relation-population options for
// list endpoints. All values are validated during parsing: unknown sort fields
// and relations are dropped rather than rejected, matching the lenient query
// surface of the API.
type ListParams struct {
	Page     int
	Limit    int
	Sort     string // whitelisted column name, empty when not requested
	Desc     bool
	Populate []string // whitelisted relation names
}

// Offset returns the row offset implied by Page and Limit.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// OrderExpr returns the ORDER BY expression, or empty when no sort was requested.
func (p ListParams) OrderExpr() string {
	if p.Sort == "" {
		return ""
	}
	if p.Desc {
		return p.Sort + " DESC"
	}
	return p.Sort + " ASC"
}

// Variant returns a canonical cache-key fragment for the parameters. Requests
// that parse to the same ListParams share a variant regardless of parameter
// order or unrecognized query noise, so cache keys stay bounded by the
// whitelists and the limit clamp.
func (p ListParams) Variant() string {
	var b strings.Builder
	fmt.Fprintf(&b, "p%d.l%d", p.Page, p.Limit)

	if p.Sort != "" {
		dir := "asc"
		if p.Desc {
			dir = "desc"
		}
		fmt.Fprintf(&b, ".s%s-%s", p.Sort, dir)
	}

	if len(p.Populate) > 0 {
		relations := append([]string(nil), p.Populate...)
		sort.Strings(relations)
		b.WriteString(".r" + strings.Join(relations, "-"))
	}

	return b.String()
}

// ParseListParams reads page, limit, sort, and populate from the query string.
//
//	page=2&limit=50          -> pagination, limit clamped to 100
//	sort=name:desc           -> ordering on a field from sortFields
//	populate=teacher,students -> relations from relationsByName
//
// sortFields maps the query-facing field name to a column name. relationsByName
// maps the query-facing relation name to the ORM relation.
func ParseListParams(values url.Values, sortFields map[string]string, relationsByName map[string]string) ListParams {
	p := ListParams{
		Page:  defaultPage,
		Limit: defaultLimit,
	}

	if page, err := strconv.Atoi(values.Get("page")); err == nil && page > 0 {
		p.Page = page
	}

	if limit, err := strconv.Atoi(values.Get("limit")); err == nil && limit > 0 {
		if limit > maxLimit {
			limit = maxLimit
		}
		p.Limit = limit
	}

	if sort := values.Get("sort"); sort != "" {
		field, dir, _ := strings.Cut(sort, ":")
		if column, ok := sortFields[strings.ToLower(strings.TrimSpace(field))]; ok {
			p.Sort = column
			p.Desc = strings.EqualFold(strings.TrimSpace(dir), "desc")
		}
	}

	if populate := values.Get("populate"); populate != "" {
		for _, name := range strings.Split(populate, ",") {
			relation, ok := relationsByName[strings.ToLower(strings.TrimSpace(name))]
			if !ok {
				continue
			}
			p.Populate = append(p.Populate, relation)
		}
	}

	return p
}
