// Package store orchestrates account registration, promotion lookup and the
// product mirror kept in the content store.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/imrishuroy/ordering-bff/internal/apperr"
	"github.com/imrishuroy/ordering-bff/internal/commerce"
	"github.com/imrishuroy/ordering-bff/internal/content"
)

var errProductMissing = errors.New("product not found in commerce platform")

type Service struct {
	commerce Commerce
	content  content.Committer
	events   EventPublisher
	logger   logrus.FieldLogger
	nowFunc  func() time.Time
}

type Option func(*Service)

// WithEventPublisher publishes a MirrorEvent after every committed mirror write.
func WithEventPublisher(p EventPublisher) Option {
	return func(s *Service) { s.events = p }
}

func NewService(c Commerce, committer content.Committer, logger logrus.FieldLogger, opts ...Option) *Service {
	s := &Service{
		commerce: c,
		content:  committer,
		logger:   logger,
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterAccount creates the account upstream and returns it unmodified.
func (s *Service) RegisterAccount(ctx context.Context, reg AccountRegistration) (*commerce.UserAccount, error) {
	acct, err := s.commerce.CreateAccount(ctx, accountPayload(reg))
	if err != nil {
		s.logger.WithError(err).Error("create account failed")
		return nil, apperr.UpstreamWriteFailed("register account", "", "Error creating account", err)
	}
	return acct, nil
}

func accountPayload(reg AccountRegistration) commerce.AccountPayload {
	return commerce.AccountPayload{
		FirstName:  reg.FirstName,
		LastName:   reg.LastName,
		Email:      reg.Email,
		EmailOptin: reg.EmailOptin,
		Password:   reg.Password,
		Phone:      reg.Phone,
		Metadata: commerce.AccountMetadata{
			PrefersSmsNotification:   reg.AcceptsPhoneTerms,
			PrefersPushNotification:  boolOrTrue(reg.PrefersPushNotification),
			PrefersEmailNotification: boolOrTrue(reg.PrefersEmailNotification),
		},
	}
}

func boolOrTrue(b *bool) bool {
	if b == nil {
		return true
	}
	return *b
}

func (s *Service) GetPromotion(ctx context.Context, id string) (*commerce.Promotion, error) {
	promo, err := s.commerce.GetPromotion(ctx, id)
	if errors.Is(err, commerce.ErrNotFound) {
		s.logger.WithField("promotion_id", id).Warn("promotion not found")
		return nil, apperr.NotFound("fetch promotion", id, "Promotion not found")
	}
	if err != nil {
		s.logger.WithError(err).WithField("promotion_id", id).Error("fetch promotion failed")
		return nil, apperr.UpstreamFetchFailed("fetch promotion", id, "Error fetching promotion", err)
	}
	return promo, nil
}

// UpdateProduct mirrors the product and its variants into the content store
// in one transaction. A product the platform does not know is reported as a
// write failure, not as not-found.
func (s *Service) UpdateProduct(ctx context.Context, id string) (*content.CommitResult, error) {
	log := s.logger.WithField("product_id", id)

	var (
		product  commerce.Record
		variants []commerce.Record
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		product, err = s.commerce.GetProduct(gctx, id)
		if err != nil {
			return fmt.Errorf("fetch product: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		variants, err = s.commerce.ListVariants(gctx, id)
		if err != nil {
			return fmt.Errorf("fetch variants: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		log.WithError(err).Error("update product failed")
		return nil, apperr.UpstreamWriteFailed("update product", id, "Error updating product", err)
	}

	if product == nil {
		log.Error("no product found")
		return nil, apperr.UpstreamWriteFailed("update product", id, "Error updating product", errProductMissing)
	}

	productDoc := mirrorDocument(product, ProductType, id)
	productDoc["deleted"] = false

	tx := content.NewTransaction(s.content)
	tx.CreateIfNotExists(productDoc).PatchSet(id, productDoc)

	variantIDs := make([]string, 0, len(variants))
	refs := make([]map[string]interface{}, 0, len(variants))
	for _, v := range variants {
		vid := v.ID()
		if vid == "" {
			err := fmt.Errorf("variant of product %s has no id", id)
			log.WithError(err).Error("update product failed")
			return nil, apperr.UpstreamWriteFailed("update product", id, "Error updating product", err)
		}
		variantDoc := mirrorDocument(v, VariantType, vid)
		tx.CreateIfNotExists(variantDoc).PatchSet(vid, variantDoc)

		variantIDs = append(variantIDs, vid)
		refs = append(refs, map[string]interface{}{
			"_type": "reference",
			"_ref":  vid,
			"_key":  vid,
		})
	}
	log.WithField("variant_ids", variantIDs).Info("patching variants")

	tx.PatchSet(id, map[string]interface{}{"variants": refs})

	result, err := tx.Commit(ctx)
	if err != nil {
		log.WithError(err).WithField("transaction_id", tx.ID()).Error("commit product mirror failed")
		return nil, apperr.UpstreamWriteFailed("update product", id, "Error updating product", err)
	}

	s.publish(ctx, MirrorEvent{
		ProductID:     id,
		Action:        ActionUpdated,
		TransactionID: result.TransactionID,
		VariantIDs:    variantIDs,
		OccurredAt:    s.nowFunc().UTC(),
	})
	return result, nil
}

// DeleteProduct flags the mirror document as deleted. The document is kept.
func (s *Service) DeleteProduct(ctx context.Context, id string) (*content.CommitResult, error) {
	log := s.logger.WithField("product_id", id)

	doc := content.Document{
		"_id":     id,
		"_type":   ProductType,
		"deleted": true,
	}
	tx := content.NewTransaction(s.content)
	tx.CreateIfNotExists(doc).PatchSet(id, doc)

	log.Info("marking product as deleted")
	result, err := tx.Commit(ctx)
	if err != nil {
		log.WithError(err).WithField("transaction_id", tx.ID()).Error("delete product failed")
		return nil, apperr.UpstreamWriteFailed("delete product", id, "Error deleting product", err)
	}

	s.publish(ctx, MirrorEvent{
		ProductID:     id,
		Action:        ActionDeleted,
		TransactionID: result.TransactionID,
		OccurredAt:    s.nowFunc().UTC(),
	})
	return result, nil
}

// mirrorDocument copies every upstream field and tags it for the content store.
func mirrorDocument(rec commerce.Record, docType, id string) content.Document {
	doc := make(content.Document, len(rec)+2)
	for k, v := range rec {
		doc[k] = v
	}
	doc["_type"] = docType
	doc["_id"] = id
	return doc
}

func (s *Service) publish(ctx context.Context, event MirrorEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishMirrorEvent(ctx, event); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"product_id":     event.ProductID,
			"action":         event.Action,
			"transaction_id": event.TransactionID,
		}).Warn("publish mirror event failed")
	}
}
