package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/imrishuroy/ordering-bff/internal/apperr"
	"github.com/imrishuroy/ordering-bff/internal/attestation"
	"github.com/imrishuroy/ordering-bff/internal/commerce"
	"github.com/imrishuroy/ordering-bff/internal/content"
	"github.com/imrishuroy/ordering-bff/internal/location"
	"github.com/imrishuroy/ordering-bff/internal/store"
	"github.com/imrishuroy/ordering-bff/internal/validation"
)

type LocationService interface {
	GetLocationInventory(ctx context.Context, locationID string) (*location.Inventory, error)
	GetLocationInventoryItem(ctx context.Context, locationID, sku string) (*location.InventoryItem, error)
	GetLocationStatus(ctx context.Context, locationID string) (*location.StatusResponse, error)
	GetTheoreticalPickupEta(ctx context.Context, locationID string, items []location.PickupItem) (location.TheoreticalEta, error)
}

type StoreService interface {
	RegisterAccount(ctx context.Context, reg store.AccountRegistration) (*commerce.UserAccount, error)
	GetPromotion(ctx context.Context, id string) (*commerce.Promotion, error)
	UpdateProduct(ctx context.Context, id string) (*content.CommitResult, error)
	DeleteProduct(ctx context.Context, id string) (*content.CommitResult, error)
}

// HandlerConfig groups dependencies for the API handlers.
type HandlerConfig struct {
	Location  LocationService
	Store     StoreService
	Verifier  attestation.Verifier
	Logger    logrus.FieldLogger
	Validator *validatorv10.Validate
}

func (cfg HandlerConfig) validator() *validatorv10.Validate {
	if cfg.Validator != nil {
		return cfg.Validator
	}
	return validation.New()
}

// RegisterAPIRoutes mounts every client-facing route under prefix, behind
// App Check verification.
func RegisterAPIRoutes(r gin.IRouter, prefix string, cfg HandlerConfig) {
	api := r.Group(prefix, attestation.RequireAppCheck(cfg.Verifier, cfg.Logger))
	RegisterLocationRoutes(api, cfg)
	RegisterStoreRoutes(api, cfg)
}

// respondError renders err with the status its kind maps to. Upstream
// detail stays in the gin error list for the request logger.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(apperr.HTTPStatus(err), gin.H{
		"error":   apperr.Code(err),
		"message": apperr.PublicMessage(err),
	})
}

func badRequest(c *gin.Context, code, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": code, "message": message})
}
