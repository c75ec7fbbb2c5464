package handler

import (
	"net/http"
	"strconv"

	"github.com/Elite-tch/privacycart/internal/service"

	"github.com/labstack/echo/v4"
)

type VaultHandler struct {
	vaultService service.VaultService
}

func NewVaultHandler(vaultService service.VaultService) *VaultHandler {
	return &VaultHandler{
		vaultService: vaultService,
	}
}

func (h *VaultHandler) ListReceipts(c echo.Context) error {
	ctx := c.Request().Context()

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = n
	}

	receipts, err := h.vaultService.ListReceipts(ctx, sessionID(c), limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, receipts)
}

func (h *VaultHandler) ListAgents(c echo.Context) error {
	ctx := c.Request().Context()

	agents, err := h.vaultService.ListAgents(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, agents)
}
