// Package location serves inventory, status and pickup ETA reads for a
// physical location, delegating every call to the order-management gateway.
package location

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/imrishuroy/ordering-bff/internal/apperr"
)

type Service struct {
	gateway Gateway
	logger  logrus.FieldLogger
}

func NewService(gateway Gateway, logger logrus.FieldLogger) *Service {
	return &Service{gateway: gateway, logger: logger}
}

func (s *Service) GetLocationInventory(ctx context.Context, locationID string) (*Inventory, error) {
	inv, err := s.gateway.Inventory(ctx, locationID)
	if err != nil {
		s.logger.WithError(err).WithField("location_id", locationID).Error("fetch inventory failed")
		return nil, apperr.UpstreamFetchFailed("fetch inventory", locationID, "Error fetching inventory", err)
	}
	return inv, nil
}

func (s *Service) GetLocationInventoryItem(ctx context.Context, locationID, sku string) (*InventoryItem, error) {
	item, err := s.gateway.InventoryItem(ctx, locationID, sku)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"location_id": locationID,
			"sku":         sku,
		}).Error("fetch inventory item failed")
		return nil, apperr.UpstreamFetchFailed("fetch inventory item", sku, "Error fetching inventory item", err)
	}
	return item, nil
}

func (s *Service) GetLocationStatus(ctx context.Context, locationID string) (*StatusResponse, error) {
	status, err := s.gateway.Status(ctx, locationID)
	if err != nil {
		s.logger.WithError(err).WithField("location_id", locationID).Error("fetch location status failed")
		return nil, apperr.UpstreamFetchFailed("fetch location status", locationID, "Error fetching location status", err)
	}
	return status, nil
}

func (s *Service) GetTheoreticalPickupEta(ctx context.Context, locationID string, items []PickupItem) (TheoreticalEta, error) {
	eta, err := s.gateway.TheoreticalEta(ctx, locationID, items)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"location_id": locationID,
			"items":       len(items),
		}).Error("fetch theoretical pickup eta failed")
		return nil, apperr.UpstreamFetchFailed("fetch theoretical pickup eta", locationID, "Error fetching theoretical pickup eta", err)
	}
	return eta, nil
}
