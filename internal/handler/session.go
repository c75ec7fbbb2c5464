package handler

import (
	"net/http"
	"strconv"

	"github.com/Elite-tch/privacycart/internal/dto"
	"github.com/Elite-tch/privacycart/internal/middleware"
	"github.com/Elite-tch/privacycart/internal/service"

	"github.com/labstack/echo/v4"
)

type SessionHandler struct {
	shopService service.ShopService
}

func NewSessionHandler(shopService service.ShopService) *SessionHandler {
	return &SessionHandler{
		shopService: shopService,
	}
}

func sessionID(c echo.Context) string {
	id, _ := c.Get(middleware.SessionKey).(string)
	return id
}

// state responds with the session snapshot after a successful operation.
func (h *SessionHandler) state(c echo.Context, status int) error {
	snapshot, err := h.shopService.Snapshot(c.Request().Context(), sessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(status, snapshot)
}

// do runs op and answers with the resulting state.
func (h *SessionHandler) do(c echo.Context, op func() error) error {
	if err := op(); err != nil {
		return err
	}
	return h.state(c, http.StatusOK)
}

func (h *SessionHandler) CreateSession(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := h.shopService.CreateSession(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, dto.CreateSessionResponse{ID: id})
}

func (h *SessionHandler) GetSession(c echo.Context) error {
	return h.state(c, http.StatusOK)
}

func (h *SessionHandler) CloseSession(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.shopService.CloseSession(ctx, sessionID(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *SessionHandler) SelectProduct(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ProductRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	return h.do(c, func() error { return h.shopService.SelectProduct(ctx, sessionID(c), req.ProductID) })
}

func (h *SessionHandler) CloseProduct(c echo.Context) error {
	ctx := c.Request().Context()
	return h.do(c, func() error { return h.shopService.CloseProduct(ctx, sessionID(c)) })
}

func (h *SessionHandler) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ProductRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	return h.do(c, func() error { return h.shopService.AddToCart(ctx, sessionID(c), req.ProductID) })
}

func (h *SessionHandler) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid cart index")
	}

	return h.do(c, func() error { return h.shopService.RemoveFromCart(ctx, sessionID(c), index) })
}

func (h *SessionHandler) OpenDashboard(c echo.Context) error {
	ctx := c.Request().Context()
	return h.do(c, func() error { return h.shopService.OpenDashboard(ctx, sessionID(c)) })
}

func (h *SessionHandler) CloseDashboard(c echo.Context) error {
	ctx := c.Request().Context()
	return h.do(c, func() error { return h.shopService.CloseDashboard(ctx, sessionID(c)) })
}

func (h *SessionHandler) StartCheckout(c echo.Context) error {
	ctx := c.Request().Context()
	return h.do(c, func() error { return h.shopService.StartCheckout(ctx, sessionID(c)) })
}

func (h *SessionHandler) ConfirmPayment(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.shopService.ConfirmPayment(ctx, sessionID(c)); err != nil {
		return err
	}
	return h.state(c, http.StatusAccepted)
}

func (h *SessionHandler) ReturnToMarket(c echo.Context) error {
	ctx := c.Request().Context()
	return h.do(c, func() error { return h.shopService.ReturnToMarket(ctx, sessionID(c)) })
}

func (h *SessionHandler) CloseCheckout(c echo.Context) error {
	ctx := c.Request().Context()
	return h.do(c, func() error { return h.shopService.CloseCheckout(ctx, sessionID(c)) })
}

func (h *SessionHandler) OpenIntent(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.QueryRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	if err := h.shopService.OpenIntent(ctx, sessionID(c), req.Query); err != nil {
		return err
	}
	return h.state(c, http.StatusAccepted)
}

func (h *SessionHandler) RefineIntent(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.MessageRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	if err := h.shopService.RefineIntent(ctx, sessionID(c), req.Content); err != nil {
		return err
	}
	return h.state(c, http.StatusAccepted)
}

func (h *SessionHandler) SelectSuggestion(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ProductRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	if _, err := h.shopService.SelectSuggestion(ctx, sessionID(c), req.ProductID); err != nil {
		return err
	}
	return h.state(c, http.StatusOK)
}

func (h *SessionHandler) CloseIntent(c echo.Context) error {
	ctx := c.Request().Context()
	return h.do(c, func() error { return h.shopService.CloseIntent(ctx, sessionID(c)) })
}

func (h *SessionHandler) SendChat(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.MessageRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	if err := h.shopService.SendChat(ctx, sessionID(c), req.Content); err != nil {
		return err
	}
	return h.state(c, http.StatusAccepted)
}
