package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"yelp_data_service/internal/app/model"
	"yelp_data_service/internal/app/repository"
)

// Register は全ルートを登録します。
// パスは末尾スラッシュなしで登録し、RemoveTrailingSlash で "/businesses/" も受け付けます。
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/", h.root)
	e.GET("/health", h.health)

	v1 := e.Group("/api/v1")

	b := v1.Group("/" + model.MustLookup(model.KindBusiness).Plural)
	b.GET("", h.listBusinesses)
	b.GET("/city/:city", h.listBusinessesByCity)
	b.GET("/state/:state", h.listBusinessesByState)
	b.GET("/stars/:min_stars", h.listBusinessesByStars)
	b.GET("/:business_id", h.getBusiness)

	r := v1.Group("/" + model.MustLookup(model.KindReview).Plural)
	r.GET("", h.listReviews)
	r.GET("/simple", h.listReviewsSimple)
	r.GET("/business/:business_id", h.listReviewsByBusiness)
	r.GET("/business/:business_id/simple", h.listReviewsByBusinessSimple)
	r.GET("/user/:user_id", h.listReviewsByUser)
	r.GET("/user/:user_id/simple", h.listReviewsByUserSimple)
	if h.debug {
		r.GET("/debug/user/:user_id", h.debugUserReviews)
	}
	r.GET("/:review_id", h.getReview)

	u := v1.Group("/" + model.MustLookup(model.KindUser).Plural)
	u.GET("", h.listUsers)
	u.GET("/:user_id", h.getUser)

	t := v1.Group("/" + model.MustLookup(model.KindTip).Plural)
	t.GET("", h.listTips)
	t.GET("/simple", h.listTipsSimple)
	t.GET("/business/:business_id", h.listTipsByBusiness)
	t.GET("/business/:business_id/simple", h.listTipsByBusinessSimple)
	t.GET("/user/:user_id", h.listTipsByUser)
	t.GET("/user/:user_id/simple", h.listTipsByUserSimple)
	t.GET("/:user_id/:business_id", h.getTip)

	ch := v1.Group("/" + model.MustLookup(model.KindCheckin).Plural)
	ch.GET("", h.listCheckins)
	ch.GET("/business/:business_id", h.listCheckinsByBusiness)
	ch.GET("/:business_id/:date", h.getCheckin)
}

func (h *Handler) root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Welcome to " + h.api.Title,
		"version": h.api.Version,
	})
}

func (h *Handler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

// businesses

func (h *Handler) listBusinesses(c echo.Context) error {
	return list(h, c, func(q *repository.Queries, p repository.Page) ([]model.Business, error) {
		return q.ListBusinesses(p)
	})
}

func (h *Handler) getBusiness(c echo.Context) error {
	id := param(c, "business_id")
	return respondOne(h, c, "Business", func(q *repository.Queries) (*model.Business, error) {
		return q.GetBusiness(id)
	})
}

func (h *Handler) listBusinessesByCity(c echo.Context) error {
	city := param(c, "city")
	return list(h, c, func(q *repository.Queries, p repository.Page) ([]model.Business, error) {
		return q.ListBusinessesByCity(city, p)
	})
}

func (h *Handler) listBusinessesByState(c echo.Context) error {
	state := param(c, "state")
	return list(h, c, func(q *repository.Queries, p repository.Page) ([]model.Business, error) {
		return q.ListBusinessesByState(state, p)
	})
}

func (h *Handler) listBusinessesByStars(c echo.Context) error {
	var minStars float64
	if err := echo.PathParamsBinder(c).MustFloat64("min_stars", &minStars).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "min_stars must be a number")
	}
	return list(h, c, func(q *repository.Queries, p repository.Page) ([]model.Business, error) {
		return q.ListBusinessesByMinStars(minStars, p)
	})
}

// reviews: 既定は名前付き、/simple は結合なしの高速版

func (h *Handler) listReviews(c echo.Context) error {
	return list(h, c, func(q *repository.Queries, p repository.Page) ([]model.ReviewWithNames, error) {
		return q.ListReviewsWithNames(p)
	})
}

func (h *Handler) listReviewsSimple(c echo.Context) error {
	return list(h, c, func(q *repository.Queries, p repository.Page) ([]model.Review, error) {
		return q.ListReviews(p)
	})
}

func (h *Handler) getReview(c echo.Context) error {
	id := param(c, "review_id")
	return respondOne(h, c, "Review", func(q *repository.Queries) (*model.ReviewWithNames, error) {
		return q.GetReviewWithNames(id)
	})
}

func (h *Handler) listReviewsByBusiness(c echo.Context) error {
	id := param(c, "business_id")
	return list(h, c, func(q *repository.Queries, p repository.Page) ([]model.ReviewWithNames, error) {
		return q.ListReviewsByBusinessWithNames(id, p)
	})
}

func (h *Handler) listReviewsByBusinessSimple(c echo.Context) error {
	id := param(c, "business_id")
	return list(h, c, func(q *repository.Queries, p repository.Page) ([]model.Review, error) {
		return q.ListReviewsByBusiness(id, p)
	})
}

func (h *Handler) listReviewsByUser(c echo.Context) error {
	id := param(c, "user_id")
	return list(h, c, func(q *repository.Queries, p repository.Page) ([]model.ReviewWithNames, error) {
		return q.ListReviewsByUserWithNames(id, p)
	})
}

func (h *Handler) listReviewsByUserSimple(c echo.Context) error {
	id := param(c, "user_id")
	return list(h, c, func(q *repository.Queries, p repository.Page) ([]model.Review, error) {
		return q.ListReviewsByUser(id, p)
	})
}

// debugUserReviews は review_count のずれを調べるための読み取り専用エンドポイントです。
func (h *Handler) debugUserReviews(c echo.Context) error {
	id := param(c, "user_id")
	return respond(h, c, func(q *repository.Queries) (*repository.ReviewCountDiagnostic, error) {
		return q.ReviewCountDiagnostic(id)
	})
}

// users

func (h *Handler) listUsers(c echo.Context) error {
	return list(h, c, func(q *repository.Queries, p repository.Page) ([]model.User, error) {
		return q.ListUsers(p)
	})
}

func (h *Handler) getUser(c echo.Context) error {
	id := param(c, "user_id")
	return respondOne(h, c, "User", func(q *repository.Queries) (*model.User, error) {
		return q.GetUser(id)
	})
}

// tips

func (h *Handler) listTips(c echo.Context) error {
	return list(h, c, func(q *repository.Queries, p repository.Page) ([]model.TipWithNames, error) {
		return q.ListTipsWithNames(p)
	})
}

func (h *Handler) listTipsSimple(c echo.Context) error {
	return list(h, c, func(q *repository.Queries, p repository.Page) ([]model.Tip, error) {
		return q.ListTips(p)
	})
}

func (h *Handler) getTip(c echo.Context) error {
	userID, businessID := param(c, "user_id"), param(c, "business_id")
	return respondOne(h, c, "Tip", func(q *repository.Queries) (*model.Tip, error) {
		return q.GetTip(userID, businessID)
	})
}

func (h *Handler) listTipsByBusiness(c echo.Context) error {
	id := param(c, "business_id")
	return list(h, c, func(q *repository.Queries, p repository.Page) ([]model.TipWithNames, error) {
		return q.ListTipsByBusinessWithNames(id, p)
	})
}

func (h *Handler) listTipsByBusinessSimple(c echo.Context) error {
	id := param(c, "business_id")
	return list(h, c, func(q *repository.Queries, p repository.Page) ([]model.Tip, error) {
		return q.ListTipsByBusiness(id, p)
	})
}

func (h *Handler) listTipsByUser(c echo.Context) error {
	id := param(c, "user_id")
	return list(h, c, func(q *repository.Queries, p repository.Page) ([]model.TipWithNames, error) {
		return q.ListTipsByUserWithNames(id, p)
	})
}

func (h *Handler) listTipsByUserSimple(c echo.Context) error {
	id := param(c, "user_id")
	return list(h, c, func(q *repository.Queries, p repository.Page) ([]model.Tip, error) {
		return q.ListTipsByUser(id, p)
	})
}

// checkins

func (h *Handler) listCheckins(c echo.Context) error {
	return list(h, c, func(q *repository.Queries, p repository.Page) ([]model.Checkin, error) {
		return q.ListCheckins(p)
	})
}

func (h *Handler) getCheckin(c echo.Context) error {
	businessID, date := param(c, "business_id"), param(c, "date")
	return respondOne(h, c, "Checkin", func(q *repository.Queries) (*model.Checkin, error) {
		return q.GetCheckin(businessID, date)
	})
}

func (h *Handler) listCheckinsByBusiness(c echo.Context) error {
	id := param(c, "business_id")
	return list(h, c, func(q *repository.Queries, p repository.Page) ([]model.Checkin, error) {
		return q.ListCheckinsByBusiness(id, p)
	})
}
