package repository

import "yelp_data_service/internal/app/model"

func (q *Queries) ListTips(page Page) ([]model.Tip, error) {
	return list[model.Tip](q, model.KindTip, nil, page, q.ceilings.Tip)
}

func (q *Queries) ListTipsWithNames(page Page) ([]model.TipWithNames, error) {
	return q.tipsWithNames(nil, page)
}

func (q *Queries) GetTip(userID, businessID string) (*model.Tip, error) {
	return get[model.Tip](q, model.KindTip, userID, businessID)
}

func (q *Queries) ListTipsByBusiness(businessID string, page Page) ([]model.Tip, error) {
	return list[model.Tip](q, model.KindTip, []Filter{Eq("business_id", businessID)}, page, q.ceilings.Tip)
}

func (q *Queries) ListTipsByBusinessWithNames(businessID string, page Page) ([]model.TipWithNames, error) {
	return q.tipsWithNames([]Filter{Eq("business_id", businessID)}, page)
}

func (q *Queries) ListTipsByUser(userID string, page Page) ([]model.Tip, error) {
	return list[model.Tip](q, model.KindTip, []Filter{Eq("user_id", userID)}, page, q.ceilings.Tip)
}

func (q *Queries) ListTipsByUserWithNames(userID string, page Page) ([]model.TipWithNames, error) {
	return q.tipsWithNames([]Filter{Eq("user_id", userID)}, page)
}

func (q *Queries) tipsWithNames(filters []Filter, page Page) ([]model.TipWithNames, error) {
	return listWithNames(q, model.KindTip, filters, page, q.ceilings.TipWithNames, model.TipsWithoutNames)
}
