package repository

import "yelp_data_service/internal/app/model"

func (q *Queries) ListUsers(page Page) ([]model.User, error) {
	return list[model.User](q, model.KindUser, nil, page, q.ceilings.User)
}

func (q *Queries) GetUser(userID string) (*model.User, error) {
	return get[model.User](q, model.KindUser, userID)
}
