package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/pharmaware/counterpos-api/internal/application/service"
	"github.com/pharmaware/counterpos-api/internal/presentation/http/dto/response"
)

// InventoryHandler handles medicine lookup HTTP requests.
type InventoryHandler struct {
	inventoryService *service.InventoryService
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(inventoryService *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// ListNames returns medicine display names in source order, optionally
// filtered by ?q= for autocomplete.
func (h *InventoryHandler) ListNames(c *gin.Context) {
	names := h.inventoryService.ListNames(c.Query("q"))
	response.OK(c, "Medicine names retrieved", gin.H{"names": names})
}

// Get returns a single medicine record by name.
func (h *InventoryHandler) Get(c *gin.Context) {
	rec, err := h.inventoryService.GetMedicine(c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Medicine retrieved", rec)
}

// Reload re-reads the inventory from its source.
func (h *InventoryHandler) Reload(c *gin.Context) {
	if err := h.inventoryService.Reload(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Inventory reloaded", gin.H{"self_check": h.inventoryService.SelfCheck()})
}
