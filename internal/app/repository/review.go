package repository

import "yelp_data_service/internal/app/model"

// レビューは常に新しい順 (date 降順) で返します。

func (q *Queries) ListReviews(page Page) ([]model.Review, error) {
	return list[model.Review](q, model.KindReview, nil, page, q.ceilings.Review)
}

func (q *Queries) ListReviewsWithNames(page Page) ([]model.ReviewWithNames, error) {
	return q.reviewsWithNames(nil, page)
}

func (q *Queries) GetReview(reviewID string) (*model.Review, error) {
	return get[model.Review](q, model.KindReview, reviewID)
}

func (q *Queries) GetReviewWithNames(reviewID string) (*model.ReviewWithNames, error) {
	rows, err := q.reviewsWithNames([]Filter{Eq("review_id", reviewID)}, Page{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

func (q *Queries) ListReviewsByBusiness(businessID string, page Page) ([]model.Review, error) {
	return list[model.Review](q, model.KindReview, []Filter{Eq("business_id", businessID)}, page, q.ceilings.Review)
}

func (q *Queries) ListReviewsByBusinessWithNames(businessID string, page Page) ([]model.ReviewWithNames, error) {
	return q.reviewsWithNames([]Filter{Eq("business_id", businessID)}, page)
}

func (q *Queries) ListReviewsByUser(userID string, page Page) ([]model.Review, error) {
	return list[model.Review](q, model.KindReview, []Filter{Eq("user_id", userID)}, page, q.ceilings.Review)
}

func (q *Queries) ListReviewsByUserWithNames(userID string, page Page) ([]model.ReviewWithNames, error) {
	return q.reviewsWithNames([]Filter{Eq("user_id", userID)}, page)
}

func (q *Queries) reviewsWithNames(filters []Filter, page Page) ([]model.ReviewWithNames, error) {
	return listWithNames(q, model.KindReview, filters, page, q.ceilings.ReviewWithNames, model.ReviewsWithoutNames)
}
