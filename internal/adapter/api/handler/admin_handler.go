package handler

import (
	"flipearn/pkg/response"

	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	moderation ModerationService
}

func NewAdminHandler(moderation ModerationService) *AdminHandler {
	return &AdminHandler{
		moderation: moderation,
	}
}

func (h *AdminHandler) BanListing(c echo.Context) error {
	listing, err := h.moderation.BanListing(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessMessage(c, "Listing banned", echo.Map{"listing": listing})
}

func (h *AdminHandler) MarkCredentialChanged(c echo.Context) error {
	listing, err := h.moderation.MarkCredentialChanged(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessMessage(c, "Credential marked as changed", echo.Map{"listing": listing})
}
