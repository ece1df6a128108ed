package repository

import "yelp_data_service/internal/app/model"

func (q *Queries) ListBusinesses(page Page) ([]model.Business, error) {
	return list[model.Business](q, model.KindBusiness, nil, page, q.ceilings.Business)
}

func (q *Queries) GetBusiness(businessID string) (*model.Business, error) {
	return get[model.Business](q, model.KindBusiness, businessID)
}

func (q *Queries) ListBusinessesByCity(city string, page Page) ([]model.Business, error) {
	return list[model.Business](q, model.KindBusiness, []Filter{Eq("city", city)}, page, q.ceilings.Business)
}

func (q *Queries) ListBusinessesByState(state string, page Page) ([]model.Business, error) {
	return list[model.Business](q, model.KindBusiness, []Filter{Eq("state", state)}, page, q.ceilings.Business)
}

// ListBusinessesByMinStars は評価が minStars 以上の店舗を返します。
func (q *Queries) ListBusinessesByMinStars(minStars float64, page Page) ([]model.Business, error) {
	return list[model.Business](q, model.KindBusiness, []Filter{AtLeast("stars", minStars)}, page, q.ceilings.Business)
}
