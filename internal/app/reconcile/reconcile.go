// Package reconcile は yelp_users.review_count を reviews の実件数に合わせるバッチです。
//
// review_count はダンプ時点のキャッシュ値で、reviews テーブルの行数とずれています。
// Run はずれを報告し、1トランザクションで全ユーザー分を修正してから再度数え直します。
package reconcile

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// actualCounts はユーザーごとの実件数です。reviews に1件もないユーザーは
// LEFT JOIN の結果 NULL になるので 0 として扱います。
// review_count が NULL のユーザーは常にずれとみなします。
const driftFrom = `
FROM yelp_users u
LEFT JOIN (
	SELECT user_id, COUNT(*) AS actual_count
	FROM reviews
	GROUP BY user_id
) r ON u.user_id = r.user_id
WHERE COALESCE(u.review_count, -1) <> COALESCE(r.actual_count, 0)`

const (
	countDriftSQL = `SELECT COUNT(*)` + driftFrom

	sampleDriftSQL = `
SELECT
	u.user_id,
	u.name,
	u.review_count AS stated_count,
	COALESCE(r.actual_count, 0) AS actual_count` + driftFrom + `
ORDER BY ABS(COALESCE(u.review_count, 0) - COALESCE(r.actual_count, 0)) DESC, u.user_id
LIMIT ?`

	// 1件以上レビューがあるユーザーを実件数に合わせる。
	// reviews.user_id には索引がないので、相関サブクエリではなく GROUP BY 1回の集計と結合する
	fixCountedSQL = `
UPDATE yelp_users
SET review_count = a.actual_count
FROM (
	SELECT user_id, COUNT(*) AS actual_count
	FROM reviews
	WHERE user_id IS NOT NULL
	GROUP BY user_id
) a
WHERE yelp_users.user_id = a.user_id
AND COALESCE(yelp_users.review_count, -1) <> a.actual_count`

	// レビューが1件もないユーザーを 0 にする。
	// NOT IN だと reviews.user_id に NULL があると1行も更新されないので NOT EXISTS を使う。
	fixZeroSQL = `
UPDATE yelp_users
SET review_count = 0
WHERE NOT EXISTS (SELECT 1 FROM reviews r WHERE r.user_id = yelp_users.user_id)
AND (review_count IS NULL OR review_count <> 0)`
)

const DefaultSampleSize = 10

// Drift は1ユーザー分のずれです。
type Drift struct {
	UserID      string  `json:"user_id"`
	Name        *string `json:"name"`
	StatedCount *int    `json:"stated_count"`
	ActualCount int64   `json:"actual_count"`
}

// Difference は stated - actual です。stated が NULL なら 0 とみなします。
func (d Drift) Difference() int64 {
	var stated int64
	if d.StatedCount != nil {
		stated = int64(*d.StatedCount)
	}
	return stated - d.ActualCount
}

type Options struct {
	// DryRun なら報告だけして更新しません。
	DryRun bool
}

// Report は1回の実行結果です。
type Report struct {
	Before             int64   `json:"before"`
	Sample             []Drift `json:"sample"`
	UpdatedWithReviews int64   `json:"updated_with_reviews"`
	UpdatedToZero      int64   `json:"updated_to_zero"`
	Remaining          int64   `json:"remaining"`
	DryRun             bool    `json:"dry_run"`
}

// Updated は更新した行数の合計です。
func (r Report) Updated() int64 {
	return r.UpdatedWithReviews + r.UpdatedToZero
}

type Reconciler struct {
	db         *gorm.DB
	log        *zap.Logger
	sampleSize int
}

func New(db *gorm.DB, log *zap.Logger, sampleSize int) *Reconciler {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	return &Reconciler{db: db, log: log, sampleSize: sampleSize}
}

// Run はずれの報告、修正、再確認を行います。
// 修正の2段階は同じトランザクションで行い、どちらかが失敗すれば両方ロールバックされます。
// 修正後にずれが残っていてもエラーにはしません (Report.Remaining で返します)。
func (r *Reconciler) Run(ctx context.Context, opts Options) (*Report, error) {
	db := r.db.WithContext(ctx)
	report := &Report{DryRun: opts.DryRun}

	// 計測は読み取りだけなのでトランザクションの外で行う。
	// 更新の2段階はまとめて原子的で、計測との間に入った書き込みは修正後の再計測で Remaining に現れる
	before, sample, err := r.measure(db)
	if err != nil {
		return nil, err
	}
	report.Before = before
	report.Sample = sample
	r.logDrift("review_count drift before fix", before, sample)

	if opts.DryRun || before == 0 {
		report.Remaining = before
		return report, nil
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(fixCountedSQL)
		if res.Error != nil {
			return fmt.Errorf("update users with reviews: %w", res.Error)
		}
		report.UpdatedWithReviews = res.RowsAffected

		res = tx.Exec(fixZeroSQL)
		if res.Error != nil {
			return fmt.Errorf("update users without reviews: %w", res.Error)
		}
		report.UpdatedToZero = res.RowsAffected
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reconcile review counts: %w", err)
	}
	r.log.Info("review_count updated",
		zap.Int64("total", report.Updated()),
		zap.Int64("with_reviews", report.UpdatedWithReviews),
		zap.Int64("to_zero", report.UpdatedToZero),
	)

	// コミット後に数え直す。ここで残るずれは並行して書き込んだ誰かがいることを意味する
	remaining, sample, err := r.measure(db)
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	report.Remaining = remaining
	if remaining == 0 {
		r.log.Info("all review counts are accurate")
	} else {
		r.logDrift("review_count drift remains after fix", remaining, sample)
	}
	return report, nil
}

func (r *Reconciler) measure(db *gorm.DB) (int64, []Drift, error) {
	var total int64
	if err := db.Raw(countDriftSQL).Scan(&total).Error; err != nil {
		return 0, nil, fmt.Errorf("count drift: %w", err)
	}
	sample := []Drift{}
	if total == 0 {
		return 0, sample, nil
	}
	if err := db.Raw(sampleDriftSQL, r.sampleSize).Scan(&sample).Error; err != nil {
		return 0, nil, fmt.Errorf("sample drift: %w", err)
	}
	return total, sample, nil
}

func (r *Reconciler) logDrift(msg string, total int64, sample []Drift) {
	fields := []zap.Field{zap.Int64("users", total)}
	for i, d := range sample {
		fields = append(fields, zap.Dict(fmt.Sprintf("sample_%d", i),
			zap.String("user_id", d.UserID),
			zap.Stringp("name", d.Name),
			zap.Intp("stated", d.StatedCount),
			zap.Int64("actual", d.ActualCount),
			zap.Int64("diff", d.Difference()),
		))
	}
	if total > 0 {
		r.log.Warn(msg, fields...)
		return
	}
	r.log.Info(msg, fields...)
}
