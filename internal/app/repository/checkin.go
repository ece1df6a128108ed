package repository

import "yelp_data_service/internal/app/model"

func (q *Queries) ListCheckins(page Page) ([]model.Checkin, error) {
	return list[model.Checkin](q, model.KindCheckin, nil, page, q.ceilings.Checkin)
}

// GetCheckin の date は保存されている文字列と完全一致で比較します。
func (q *Queries) GetCheckin(businessID, date string) (*model.Checkin, error) {
	return get[model.Checkin](q, model.KindCheckin, businessID, date)
}

func (q *Queries) ListCheckinsByBusiness(businessID string, page Page) ([]model.Checkin, error) {
	return list[model.Checkin](q, model.KindCheckin, []Filter{Eq("business_id", businessID)}, page, q.ceilings.Checkin)
}
