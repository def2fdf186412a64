package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/ordering-bff/internal/validation"
)

// RegisterLocationRoutes registers routes for location inventory, status and ETA.
func RegisterLocationRoutes(r gin.IRoutes, cfg HandlerConfig) {
	v := cfg.validator()

	r.GET("/locations/:locationId/inventory", func(c *gin.Context) {
		inv, err := cfg.Location.GetLocationInventory(c.Request.Context(), c.Param("locationId"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, inv)
	})

	r.GET("/locations/:locationId/inventory-item/:sku", func(c *gin.Context) {
		item, err := cfg.Location.GetLocationInventoryItem(c.Request.Context(), c.Param("locationId"), c.Param("sku"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	})

	r.GET("/locations/:locationId/status", func(c *gin.Context) {
		status, err := cfg.Location.GetLocationStatus(c.Request.Context(), c.Param("locationId"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, status)
	})

	r.POST("/locations/:locationId/theoretical-eta", func(c *gin.Context) {
		items, err := validation.BindPickupItems(c, v)
		if err != nil {
			// BindPickupItems already wrote a 400
			return
		}
		eta, err := cfg.Location.GetTheoreticalPickupEta(c.Request.Context(), c.Param("locationId"), items)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", eta)
	})
}
