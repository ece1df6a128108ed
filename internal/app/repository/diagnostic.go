package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"yelp_data_service/internal/app/model"
)

const (
	orphanDetailLimit  = 5
	orphanSnippetRunes = 100
)

// ReviewCountDiagnostic はユーザーの review_count がずれている理由を調べるための数値です。
type ReviewCountDiagnostic struct {
	UserID                string           `json:"user_id"`
	StatedReviewCount     int              `json:"user_stated_review_count"`
	TotalReviews          int64            `json:"total_reviews_in_db"`
	ReviewsWithBusinessID int64            `json:"reviews_with_business_id"`
	ReviewsPassingJoin    int64            `json:"reviews_passing_join"`
	OrphanedReviews       int64            `json:"orphaned_reviews"`
	OrphanedReviewDetails []OrphanedReview `json:"orphaned_review_details"`
}

// OrphanedReview は business テーブルに存在しない business_id を持つレビューです。
type OrphanedReview struct {
	ReviewID    string  `json:"review_id"`
	BusinessID  *string `json:"business_id"`
	TextSnippet *string `json:"text_snippet"`
}

// ReviewCountDiagnostic は読み取りのみで、何も更新しません。
// ユーザーが存在しない場合、StatedReviewCount は 0 です。
func (q *Queries) ReviewCountDiagnostic(userID string) (*ReviewCountDiagnostic, error) {
	d := &ReviewCountDiagnostic{UserID: userID, OrphanedReviewDetails: []OrphanedReview{}}

	user, err := q.GetUser(userID)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return nil, err
	case user.ReviewCount != nil:
		d.StatedReviewCount = *user.ReviewCount
	}

	reviews := model.MustLookup(model.KindReview).Table

	if err := q.db.Table(reviews).Where("user_id = ?", userID).Count(&d.TotalReviews).Error; err != nil {
		return nil, fmt.Errorf("count reviews: %w", err)
	}

	err = q.db.Table(reviews).
		Where("user_id = ? AND business_id IS NOT NULL", userID).
		Count(&d.ReviewsWithBusinessID).Error
	if err != nil {
		return nil, fmt.Errorf("count reviews with business: %w", err)
	}

	// 一覧 API と同じ外部結合を通した件数
	err = q.db.Table(reviews + " AS r").
		Joins("LEFT JOIN yelp_users AS u ON r.user_id = u.user_id").
		Joins("LEFT JOIN business AS b ON r.business_id = b.business_id").
		Where("r.user_id = ?", userID).
		Count(&d.ReviewsPassingJoin).Error
	if err != nil {
		return nil, fmt.Errorf("count joined reviews: %w", err)
	}

	orphans := func() *gorm.DB {
		return q.db.Table(reviews+" AS r").
			Joins("LEFT JOIN business AS b ON r.business_id = b.business_id").
			Where("r.user_id = ? AND r.business_id IS NOT NULL AND b.business_id IS NULL", userID)
	}
	if err := orphans().Count(&d.OrphanedReviews).Error; err != nil {
		return nil, fmt.Errorf("count orphaned reviews: %w", err)
	}

	var rows []struct {
		ReviewID   string
		BusinessID *string
		Text       *string
	}
	err = orphans().
		Select("r.review_id, r.business_id, r.text").
		Order("r.review_id").
		Limit(orphanDetailLimit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list orphaned reviews: %w", err)
	}
	for _, r := range rows {
		d.OrphanedReviewDetails = append(d.OrphanedReviewDetails, OrphanedReview{
			ReviewID:    r.ReviewID,
			BusinessID:  r.BusinessID,
			TextSnippet: snippet(r.Text),
		})
	}
	return d, nil
}

func snippet(text *string) *string {
	if text == nil {
		return nil
	}
	runes := []rune(*text)
	if len(runes) <= orphanSnippetRunes {
		return text
	}
	s := string(runes[:orphanSnippetRunes])
	return &s
}
