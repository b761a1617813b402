package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pharmaware/counterpos-api/internal/application/service"
	"github.com/pharmaware/counterpos-api/internal/presentation/http/dto/request"
	"github.com/pharmaware/counterpos-api/internal/presentation/http/dto/response"
	"github.com/pharmaware/counterpos-api/pkg/apperror"
)

// SessionHandler handles counter session HTTP requests: selection, cart,
// checkout.
type SessionHandler struct {
	sessionService *service.SessionService
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// Select makes a medicine the current selection.
func (h *SessionHandler) Select(c *gin.Context) {
	var req request.SelectMedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	selection, err := h.sessionService.SelectMedicine(req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Medicine selected", selection)
}

// GetSelection returns the current selection, refreshed against stock.
func (h *SessionHandler) GetSelection(c *gin.Context) {
	selection, ok := h.sessionService.CurrentSelection()
	if !ok {
		response.Error(c, apperror.ErrNoSelection)
		return
	}
	response.OK(c, "Current selection", selection)
}

// AddItem reserves a quantity of the selected medicine into the invoice.
func (h *SessionHandler) AddItem(c *gin.Context) {
	var req request.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	selection, err := h.sessionService.AddToCart(req.Quantity)
	if err != nil {
		respondStockAware(c, err)
		return
	}
	response.OK(c, "Item added to invoice", selection)
}

// GetCart returns the invoice with totals for an optional ?discount= percent.
func (h *SessionHandler) GetCart(c *gin.Context) {
	discount := 0.0
	if raw := c.Query("discount"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			response.BadRequest(c, "Invalid discount value")
			return
		}
		discount = parsed
	}

	cart, err := h.sessionService.Cart(discount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Current invoice", cart)
}

// Checkout prints the receipt, commits stock decrements, and resets the session.
func (h *SessionHandler) Checkout(c *gin.Context) {
	var req request.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	receipt, err := h.sessionService.Checkout(c.Request.Context(), service.CheckoutInput{
		DiscountPercent: req.DiscountPercent,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
	})
	if err != nil {
		// A persist failure is not a clean failure: the physical receipt
		// already printed. Return it along with the retry instruction.
		if errors.Is(err, apperror.ErrPersistence) && receipt != nil {
			response.ErrorWithData(c, http.StatusInternalServerError,
				"Receipt printed but stock changes were not saved; retry the commit",
				gin.H{"receipt": receipt})
			return
		}
		respondStockAware(c, err)
		return
	}
	response.OK(c, "Receipt printed and stock updated", gin.H{"receipt": receipt})
}

// RetryCommit re-attempts persisting stock decrements from a checkout whose
// commit failed.
func (h *SessionHandler) RetryCommit(c *gin.Context) {
	if err := h.sessionService.RetryCommit(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Stock changes saved", nil)
}

// Clear empties the invoice and releases all reservations.
func (h *SessionHandler) Clear(c *gin.Context) {
	h.sessionService.Clear()
	response.OK(c, "Invoice cleared", nil)
}

// respondStockAware surfaces insufficient-stock failures with the available
// quantity so the frontend can correct the input.
func respondStockAware(c *gin.Context, err error) {
	var insufficient *apperror.InsufficientStockError
	if errors.As(err, &insufficient) {
		response.ErrorWithData(c, http.StatusConflict, insufficient.Error(), insufficient)
		return
	}
	response.Error(c, err)
}
