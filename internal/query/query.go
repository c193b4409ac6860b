package query

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/medideal/records-api/internal/apperror"
	"gorm.io/gorm"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// reserved query keys; everything else is an equality filter
var reservedKeys = map[string]bool{
	"sort":   true,
	"select": true,
	"page":   true,
	"limit":  true,
}

var fieldNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// Options is the raw, flat set of query options for a list fetch
type Options struct {
	Filter map[string]string
	Sort   string
	Select string
	Page   int
	Limit  int
}

// Parse builds Options from URL query values
func Parse(values map[string][]string) Options {
	opts := Options{
		Filter: make(map[string]string),
		Page:   defaultPage,
		Limit:  defaultLimit,
	}

	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		value := vals[0]
		switch key {
		case "sort":
			opts.Sort = value
		case "select":
			opts.Select = value
		case "page":
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				opts.Page = n
			}
		case "limit":
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				opts.Limit = n
			}
		default:
			opts.Filter[key] = value
		}
	}

	if opts.Limit > maxLimit {
		opts.Limit = maxLimit
	}

	return opts
}

// Apply composes the fetch plan onto tx: filter, sort, projection and
// pagination. The plan is not executed here. A projection naming the
// password field is rejected before any fetch happens.
func (o Options) Apply(tx *gorm.DB) (*gorm.DB, error) {
	for field, value := range o.Filter {
		if !fieldNamePattern.MatchString(field) {
			return nil, apperror.BadRequest("Invalid filter fields")
		}
		tx = tx.Where(map[string]interface{}{toSnake(field): value})
	}

	if o.Sort != "" {
		for _, field := range strings.Split(o.Sort, ",") {
			field = strings.TrimSpace(field)
			desc := strings.HasPrefix(field, "-")
			field = strings.TrimPrefix(field, "-")
			if !fieldNamePattern.MatchString(field) {
				return nil, apperror.BadRequest("Invalid sort fields")
			}
			column := toSnake(field)
			if desc {
				column += " DESC"
			}
			tx = tx.Order(column)
		}
	}

	if o.Select != "" {
		if strings.Contains(o.Select, "password") {
			return nil, apperror.BadRequest("Invalid selected fields")
		}
		columns := make([]string, 0)
		for _, field := range strings.Split(o.Select, ",") {
			field = strings.TrimSpace(field)
			if !fieldNamePattern.MatchString(field) {
				return nil, apperror.BadRequest("Invalid selected fields")
			}
			columns = append(columns, toSnake(field))
		}
		tx = tx.Select(columns)
	} else {
		tx = tx.Omit("password")
	}

	page := o.Page
	if page < 1 {
		page = defaultPage
	}
	limit := o.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	tx = tx.Offset((page - 1) * limit).Limit(limit)

	return tx, nil
}

func toSnake(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
