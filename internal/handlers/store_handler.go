package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"

	"github.com/imrishuroy/ordering-bff/internal/store"
	"github.com/imrishuroy/ordering-bff/internal/validation"
)

// RegisterStoreRoutes registers account, promotion and product mirror routes.
func RegisterStoreRoutes(r gin.IRoutes, cfg HandlerConfig) {
	v := cfg.validator()

	r.POST("/accounts/register", func(c *gin.Context) {
		var req validation.AccountRegistrationRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			// BindAndValidate already wrote a 400
			return
		}
		acct, err := cfg.Store.RegisterAccount(c.Request.Context(), store.AccountRegistration{
			FirstName:                req.FirstName,
			LastName:                 req.LastName,
			Email:                    req.Email,
			EmailOptin:               req.EmailOptin,
			Password:                 req.Password,
			Phone:                    req.Phone,
			AcceptsPhoneTerms:        req.AcceptsPhoneTerms,
			PrefersPushNotification:  req.PrefersPushNotification,
			PrefersEmailNotification: req.PrefersEmailNotification,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, acct)
	})

	r.GET("/promotions/:id", func(c *gin.Context) {
		promo, err := cfg.Store.GetPromotion(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, promo)
	})

	updateProduct := func(c *gin.Context) {
		id, ok := productID(c)
		if !ok {
			return
		}
		result, err := cfg.Store.UpdateProduct(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
	r.POST("/products/update", updateProduct)
	r.POST("/products/update/:id", updateProduct)

	deleteProduct := func(c *gin.Context) {
		id, ok := productID(c)
		if !ok {
			return
		}
		result, err := cfg.Store.DeleteProduct(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
	r.POST("/products/delete", deleteProduct)
	r.POST("/products/delete/:id", deleteProduct)
}

// productID resolves the product from the route, the query string or a
// commerce webhook body ({"data":{"id":...}}), in that order. It writes a
// 400 when none carries an id.
func productID(c *gin.Context) (string, bool) {
	if id := strings.TrimSpace(c.Param("id")); id != "" {
		return id, true
	}
	if id := strings.TrimSpace(c.Query("id")); id != "" {
		return id, true
	}
	body, err := c.GetRawData()
	if err == nil && gjson.ValidBytes(body) {
		for _, path := range []string{"data.id", "id"} {
			if id := strings.TrimSpace(gjson.GetBytes(body, path).String()); id != "" {
				return id, true
			}
		}
	}
	badRequest(c, "missing_product_id", "A product id is required")
	return "", false
}
