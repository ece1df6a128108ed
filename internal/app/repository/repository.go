package repository

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"yelp_data_service/internal/app/config"
)

var (
	// ErrNotFound は単一行の検索で行がなかったことを表します。
	// 一覧は空のスライスを返し、このエラーは返しません。
	ErrNotFound = errors.New("record not found")
	// ErrInvalidFilter は未登録の列や演算子を指定したフィルタです。
	ErrInvalidFilter = errors.New("invalid filter")
)

// Ceilings は操作ごとの最大返却行数です。
type Ceilings struct {
	Business        int
	User            int
	Checkin         int
	Review          int
	ReviewWithNames int
	Tip             int
	TipWithNames    int
}

// DefaultCeilings は config の既定値と同じ値です。
func DefaultCeilings() Ceilings {
	return Ceilings{
		Business:        100,
		User:            100,
		Checkin:         100,
		Review:          100,
		ReviewWithNames: 10,
		Tip:             100,
		TipWithNames:    25,
	}
}

func CeilingsFrom(l config.LimitsConfig) Ceilings {
	return Ceilings{
		Business:        l.Business,
		User:            l.User,
		Checkin:         l.Checkin,
		Review:          l.Review,
		ReviewWithNames: l.ReviewWithNames,
		Tip:             l.Tip,
		TipWithNames:    l.TipWithNames,
	}
}

// Page はページングの指定です。
type Page struct {
	Skip  int
	Limit int
}

// Bound は上限に収めたページを返します。上限を超える Limit はエラーにせず切り詰めます。
func (p Page) Bound(ceiling int) Page {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 || p.Limit > ceiling {
		p.Limit = ceiling
	}
	return p
}

// Repository はコネクションプールを持ち、リクエスト単位で接続を貸し出します。
type Repository struct {
	db       *gorm.DB
	log      *zap.Logger
	ceilings Ceilings
}

func New(db *gorm.DB, log *zap.Logger, ceilings Ceilings) *Repository {
	return &Repository{db: db, log: log, ceilings: ceilings}
}

// Conn はプールから接続を1本取得し、fn の間だけ使わせます。
// fn がどう終わっても接続は返却されます。
func (r *Repository) Conn(ctx context.Context, fn func(q *Queries) error) error {
	return r.db.WithContext(ctx).Connection(func(tx *gorm.DB) error {
		return fn(&Queries{
			db:       tx.Session(&gorm.Session{NewDB: true}),
			log:      r.log,
			ceilings: r.ceilings,
		})
	})
}

// Queries は1本の接続に束ねられたクエリ群です。
type Queries struct {
	db       *gorm.DB
	log      *zap.Logger
	ceilings Ceilings
}
