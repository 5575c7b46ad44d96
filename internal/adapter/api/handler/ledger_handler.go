package handler

import (
	"flipearn/pkg/response"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type LedgerHandler struct {
	ledger LedgerService
}

func NewLedgerHandler(ledger LedgerService) *LedgerHandler {
	return &LedgerHandler{
		ledger: ledger,
	}
}

type withdrawRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	Account string          `json:"account" validate:"required"`
}

func (h *LedgerHandler) GetUserOrders(c echo.Context) error {
	auth, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	orders, err := h.ledger.ListPaidOrders(c.Request().Context(), auth.UserID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, echo.Map{"orders": orders})
}

func (h *LedgerHandler) GetBalance(c echo.Context) error {
	auth, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	balance, err := h.ledger.GetBalance(c.Request().Context(), auth.UserID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, echo.Map{"balance": balance})
}

func (h *LedgerHandler) GetWithdrawals(c echo.Context) error {
	auth, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	withdrawals, err := h.ledger.ListWithdrawals(c.Request().Context(), auth.UserID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, echo.Map{"withdrawals": withdrawals})
}

func (h *LedgerHandler) Withdraw(c echo.Context) error {
	auth, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req withdrawRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	withdrawal, err := h.ledger.RequestWithdrawal(c.Request().Context(), auth.UserID, req.Amount, req.Account)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessMessage(c, "Applied for withdrawal", echo.Map{"withdrawal": withdrawal})
}

func (h *LedgerHandler) PurchaseAccount(c echo.Context) error {
	auth, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	if err := h.ledger.PurchaseAccount(c.Request().Context(), auth.UserID, c.Param("listingId")); err != nil {
		return response.Error(c, err)
	}

	return response.SuccessMessage(c, "Purchase completed", nil)
}
