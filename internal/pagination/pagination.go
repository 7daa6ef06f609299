// Package pagination builds page/limit list queries shared by every list
// endpoint: normalization, sorting, field projection or relation preloading,
// and a total count fetched concurrently with the page.
package pagination

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/mroshb/kudos/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params is a list request as read from the query string. Zero values mean
// "not given".
type Params struct {
	Page      int
	Limit     int
	SortBy    string
	Direction string
	Pick      string
	Populate  string
}

// ParamsFromQuery reads page, limit, sort_by, direction, pick and populate.
// Unparseable numbers are treated as absent.
func ParamsFromQuery(q url.Values) Params {
	return Params{
		Page:      atoi(q.Get("page")),
		Limit:     atoi(q.Get("limit")),
		SortBy:    strings.TrimSpace(q.Get("sort_by")),
		Direction: strings.TrimSpace(q.Get("direction")),
		Pick:      q.Get("pick"),
		Populate:  q.Get("populate"),
	}
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// WithDefaults fills sort and populate when the caller left them empty.
func (p Params) WithDefaults(sortBy, direction, populate string) Params {
	if p.SortBy == "" {
		p.SortBy = sortBy
		if p.Direction == "" {
			p.Direction = direction
		}
	}
	if p.Populate == "" {
		p.Populate = populate
	}
	return p
}

// Normalize clamps page to at least 1 and limit to [1, MaxLimit], with
// DefaultLimit for an absent limit.
func Normalize(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// TotalPages is never below 1, even for an empty result.
func TotalPages(total int64, limit int) int {
	if limit < 1 {
		limit = 1
	}
	pages := int((total + int64(limit) - 1) / int64(limit))
	if pages < 1 {
		return 1
	}
	return pages
}

// Descending reports the sort direction; anything but "asc" sorts descending.
func Descending(direction string) bool {
	return !strings.EqualFold(strings.TrimSpace(direction), "asc")
}

type PageInfo struct {
	Page         int   `json:"page"`
	Limit        int   `json:"limit"`
	TotalPages   int   `json:"total_pages"`
	TotalResults int64 `json:"total_results"`
}

// Page is one page of T. With a field projection only the picked JSON keys
// of each item are rendered.
type Page[T any] struct {
	Items      []T
	Info       PageInfo
	Projection Projection
	pickedKeys []string
}

func (p *Page[T]) MarshalJSON() ([]byte, error) {
	items := p.Items
	if items == nil {
		items = []T{}
	}

	if p.Projection.Kind != ProjectFields {
		return json.Marshal(struct {
			Data       []T      `json:"data"`
			Pagination PageInfo `json:"pagination"`
		}{items, p.Info})
	}

	data := make([]map[string]json.RawMessage, 0, len(items))
	for _, item := range items {
		picked, err := pickKeys(item, p.pickedKeys)
		if err != nil {
			return nil, err
		}
		data = append(data, picked)
	}
	return json.Marshal(struct {
		Data       []map[string]json.RawMessage `json:"data"`
		Pagination PageInfo                     `json:"pagination"`
	}{data, p.Info})
}

func pickKeys(item interface{}, keys []string) (map[string]json.RawMessage, error) {
	raw, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage, len(keys))
	for _, k := range keys {
		if v, ok := all[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

// Paginate runs the bounded fetch and the count concurrently. Scopes carry
// the filter and apply to both queries.
func Paginate[T any](ctx context.Context, db *gorm.DB, params Params, scopes ...func(*gorm.DB) *gorm.DB) (*Page[T], error) {
	page, limit := Normalize(params.Page, params.Limit)

	var model T
	sch, err := parseSchema(db, &model)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "Failed to inspect model")
	}

	projection := ResolveProjection(params.Pick, params.Populate)
	plan, err := planQuery(sch, params, projection)
	if err != nil {
		return nil, err
	}

	result := &Page[T]{
		Projection: projection,
		pickedKeys: plan.pickedKeys,
		Info:       PageInfo{Page: page, Limit: limit},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		q := db.WithContext(gctx).Model(&model).Scopes(scopes...).
			Offset((page - 1) * limit).
			Limit(limit)
		if plan.order != nil {
			q = q.Order(*plan.order)
		}
		switch projection.Kind {
		case ProjectFields:
			q = q.Select(plan.columns)
		case ProjectRelations:
			for _, rel := range plan.preloads {
				q = q.Preload(rel)
			}
		}
		var items []T
		if err := q.Find(&items).Error; err != nil {
			return err
		}
		result.Items = items
		return nil
	})

	g.Go(func() error {
		var total int64
		if err := db.WithContext(gctx).Model(&model).Scopes(scopes...).Count(&total).Error; err != nil {
			return err
		}
		result.Info.TotalResults = total
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "Failed to fetch page")
	}

	result.Info.TotalPages = TotalPages(result.Info.TotalResults, limit)
	return result, nil
}

type queryPlan struct {
	order      *clause.OrderByColumn
	columns    []string
	pickedKeys []string
	preloads   []string
}

func planQuery(sch *schema.Schema, params Params, projection Projection) (*queryPlan, error) {
	plan := &queryPlan{}

	if params.SortBy != "" {
		field := lookUpField(sch, params.SortBy)
		if field == nil {
			return nil, errors.New(errors.ErrCodeValidation, "Unknown sort_by field: "+params.SortBy)
		}
		plan.order = &clause.OrderByColumn{
			Column: clause.Column{Table: clause.CurrentTable, Name: field.DBName},
			Desc:   Descending(params.Direction),
		}
	}

	switch projection.Kind {
	case ProjectFields:
		for _, name := range projection.Names {
			field := lookUpField(sch, name)
			if field == nil {
				return nil, errors.New(errors.ErrCodeValidation, "Unknown pick field: "+name)
			}
			plan.columns = append(plan.columns, field.DBName)
			plan.pickedKeys = append(plan.pickedKeys, jsonName(field))
		}
	case ProjectRelations:
		for _, name := range projection.Names {
			rel := lookUpRelation(sch, name)
			if rel == nil {
				return nil, errors.New(errors.ErrCodeValidation, "Unknown populate relation: "+name)
			}
			plan.preloads = append(plan.preloads, rel.Name)
		}
	}

	return plan, nil
}

func parseSchema(db *gorm.DB, model interface{}) (*schema.Schema, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return nil, err
	}
	return stmt.Schema, nil
}

// lookUpField matches a column by its db name, Go name or JSON name.
// Fields hidden from JSON are never matched.
func lookUpField(sch *schema.Schema, name string) *schema.Field {
	if f := sch.LookUpField(name); f != nil && f.DBName != "" && !hidden(f) {
		return f
	}
	for _, f := range sch.Fields {
		if f.DBName != "" && !hidden(f) && jsonName(f) == name {
			return f
		}
	}
	return nil
}

func lookUpRelation(sch *schema.Schema, name string) *schema.Relationship {
	for _, rel := range sch.Relationships.Relations {
		if hidden(rel.Field) {
			continue
		}
		if strings.EqualFold(rel.Name, name) || jsonName(rel.Field) == name {
			return rel
		}
	}
	return nil
}

func hidden(f *schema.Field) bool {
	return strings.Split(f.Tag.Get("json"), ",")[0] == "-"
}

func jsonName(f *schema.Field) string {
	tag := strings.Split(f.Tag.Get("json"), ",")[0]
	if tag == "" || tag == "-" {
		return f.Name
	}
	return tag
}
