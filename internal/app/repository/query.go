package repository

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yelp_data_service/internal/app/model"
)

type Op string

const (
	OpEq  Op = "="
	OpGte Op = ">="
)

// Filter は単一列に対する条件です。
type Filter struct {
	Column string
	Op     Op
	Value  any
}

func Eq(column string, value any) Filter {
	return Filter{Column: column, Op: OpEq, Value: value}
}

func AtLeast(column string, value any) Filter {
	return Filter{Column: column, Op: OpGte, Value: value}
}

func (f Filter) expr(e model.Entity) (clause.Expression, error) {
	if !e.HasColumn(f.Column) {
		return nil, fmt.Errorf("%w: %s has no column %q", ErrInvalidFilter, e.Table, f.Column)
	}
	col := clause.Column{Name: f.Column}
	switch f.Op {
	case OpEq:
		return clause.Eq{Column: col, Value: f.Value}, nil
	case OpGte:
		return clause.Gte{Column: col, Value: f.Value}, nil
	}
	return nil, fmt.Errorf("%w: unsupported operator %q", ErrInvalidFilter, f.Op)
}

// orderBy は新しい順 (Recency があれば) と主キーで並べます。
// 主キーを必ず含めるので、同じ日付でもページングが安定します。
// 日付のない行は Postgres と SQLite のどちらでも末尾に来るよう NULLS LAST を明示します。
func orderBy(e model.Entity, table string) clause.OrderBy {
	var (
		parts []string
		vars  []any
	)
	if e.Recency != "" {
		parts = append(parts, "? DESC NULLS LAST")
		vars = append(vars, clause.Column{Table: table, Name: e.Recency})
	}
	for _, pk := range e.PrimaryKey {
		parts = append(parts, "?")
		vars = append(vars, clause.Column{Table: table, Name: pk})
	}
	return clause.OrderBy{Expression: clause.Expr{SQL: strings.Join(parts, ", "), Vars: vars}}
}

// scope はフィルタ・並び順・ページを適用したベーステーブルのクエリです。
func (q *Queries) scope(e model.Entity, filters []Filter, page Page) (*gorm.DB, error) {
	tx := q.db.Table(e.Table).Select(e.Columns)
	for _, f := range filters {
		expr, err := f.expr(e)
		if err != nil {
			return nil, err
		}
		tx = tx.Where(expr)
	}
	return tx.Order(orderBy(e, "")).Offset(page.Skip).Limit(page.Limit), nil
}

func list[T any](q *Queries, kind model.Kind, filters []Filter, page Page, ceiling int) ([]T, error) {
	e := model.MustLookup(kind)
	tx, err := q.scope(e, filters, page.Bound(ceiling))
	if err != nil {
		return nil, err
	}
	rows := []T{}
	if err := tx.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", e.Table, err)
	}
	return rows, nil
}

func get[T any](q *Queries, kind model.Kind, key ...any) (*T, error) {
	e := model.MustLookup(kind)
	if len(key) != len(e.PrimaryKey) {
		return nil, fmt.Errorf("get %s: want %d key parts, got %d", e.Table, len(e.PrimaryKey), len(key))
	}
	tx := q.db.Table(e.Table).Select(e.Columns)
	for i, col := range e.PrimaryKey {
		tx = tx.Where(clause.Eq{Column: clause.Column{Name: col}, Value: key[i]})
	}
	var row T
	if err := tx.Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", e.Table, err)
	}
	return &row, nil
}

// enriched はベーステーブルを先に絞り込み・件数制限してから、
// yelp_users と business を外部結合して名前を付けます。
// 参照先がない行も落とさず、名前は NULL になります。
func enriched[T any](q *Queries, e model.Entity, filters []Filter, page Page) ([]T, error) {
	base, err := q.scope(e, filters, page)
	if err != nil {
		return nil, err
	}

	cols := make([]clause.Column, 0, len(e.Columns)+2)
	for _, c := range e.Columns {
		cols = append(cols, clause.Column{Table: "base", Name: c})
	}
	cols = append(cols,
		clause.Column{Table: "u", Name: "name", Alias: "user_name"},
		clause.Column{Table: "b", Name: "name", Alias: "business_name"},
	)

	rows := []T{}
	err = q.db.Table("(?) AS base", base).
		Clauses(clause.Select{Columns: cols}).
		Joins("LEFT JOIN yelp_users AS u ON base.user_id = u.user_id").
		Joins("LEFT JOIN business AS b ON base.business_id = b.business_id").
		Order(orderBy(e, "base")).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list %s with names: %w", e.Table, err)
	}
	return rows, nil
}

// listWithNames は名前付き一覧を返します。結合クエリが失敗した場合は
// 名前なしの一覧にフォールバックし、その事実をログに残します。
func listWithNames[T, B any](q *Queries, kind model.Kind, filters []Filter, page Page, ceiling int, strip func([]B) []T) ([]T, error) {
	e := model.MustLookup(kind)
	for _, f := range filters {
		if _, err := f.expr(e); err != nil {
			return nil, err
		}
	}
	page = page.Bound(ceiling)

	rows, err := enriched[T](q, e, filters, page)
	if err == nil {
		return rows, nil
	}
	q.log.Warn("enrichment failed, falling back to unenriched query",
		zap.String("table", e.Table),
		zap.Int("skip", page.Skip),
		zap.Int("limit", page.Limit),
		zap.Error(err),
	)

	plain, err := list[B](q, kind, filters, page, ceiling)
	if err != nil {
		return nil, err
	}
	return strip(plain), nil
}
