package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"yelp_data_service/internal/app/config"
	"yelp_data_service/internal/app/repository"
)

const defaultLimit = 100

// Handler は Query Builder の操作を HTTP に載せるだけの薄い層です。
type Handler struct {
	repo  *repository.Repository
	log   *zap.Logger
	api   config.APIConfig
	debug bool
}

func New(repo *repository.Repository, log *zap.Logger, api config.APIConfig, debug bool) *Handler {
	return &Handler{repo: repo, log: log, api: api, debug: debug}
}

// NewServer はミドルウェアとルートを設定済みの echo を返します。
func NewServer(h *Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = h.debug
	e.HTTPErrorHandler = h.handleError

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			h.log.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			)
			return nil
		},
	}))
	e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		Timeout: h.api.QueryTimeout,
	}))

	h.Register(e)
	return e
}

type errorBody struct {
	Detail string `json:"detail"`
}

// handleError は内部エラーの詳細をレスポンスに含めず、サーバー側のログにだけ残します。
func (h *Handler) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	detail := "Internal server error"

	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		status = he.Code
		if status >= http.StatusInternalServerError {
			h.log.Error("request failed", zap.Error(err), zap.String("uri", c.Request().RequestURI))
			detail = http.StatusText(status)
		} else {
			detail = fmt.Sprint(he.Message)
		}
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
		detail = "Not found"
	default:
		h.log.Error("request failed", zap.Error(err), zap.String("uri", c.Request().RequestURI))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, errorBody{Detail: detail})
	}
	if err != nil {
		h.log.Error("failed to write error response", zap.Error(err))
	}
}

// page は skip / limit を読みます。limit の上限はリポジトリ側で切り詰めます。
func page(c echo.Context) (repository.Page, error) {
	p := repository.Page{Skip: 0, Limit: defaultLimit}
	err := echo.QueryParamsBinder(c).
		Int("skip", &p.Skip).
		Int("limit", &p.Limit).
		BindError()
	if err != nil {
		return p, echo.NewHTTPError(http.StatusBadRequest, "skip and limit must be integers")
	}
	if p.Skip < 0 {
		return p, echo.NewHTTPError(http.StatusBadRequest, "skip must be greater than or equal to 0")
	}
	if p.Limit < 1 {
		return p, echo.NewHTTPError(http.StatusBadRequest, "limit must be greater than or equal to 1")
	}
	return p, nil
}

// param はパスパラメータをデコードして返します。
// RawPath が使われた場合、echo はパラメータをデコードしません。
func param(c echo.Context, name string) string {
	v := c.Param(name)
	if c.Request().URL.RawPath == "" {
		return v
	}
	if decoded, err := url.PathUnescape(v); err == nil {
		return decoded
	}
	return v
}

// respond は1本の接続でクエリを実行し、接続を返してから JSON を書きます。
func respond[T any](h *Handler, c echo.Context, fn func(q *repository.Queries) (T, error)) error {
	var out T
	err := h.repo.Conn(c.Request().Context(), func(q *repository.Queries) error {
		var err error
		out, err = fn(q)
		return err
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// respondOne は respond の単一行版で、見つからなければ 404 にします。
func respondOne[T any](h *Handler, c echo.Context, entity string, fn func(q *repository.Queries) (T, error)) error {
	err := respond(h, c, fn)
	if errors.Is(err, repository.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, entity+" not found")
	}
	return err
}

// list は一覧用のショートカットです。
func list[T any](h *Handler, c echo.Context, fn func(q *repository.Queries, p repository.Page) ([]T, error)) error {
	p, err := page(c)
	if err != nil {
		return err
	}
	return respond(h, c, func(q *repository.Queries) ([]T, error) {
		return fn(q, p)
	})
}
