package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"storefront-service/internal/errs"
	"storefront-service/internal/models"
	"storefront-service/internal/redisclient"
	"storefront-service/internal/store"
	"storefront-service/internal/util"
)

// SettingsService owns the shop configuration surface: flat settings,
// per-province shipping rules, social links and promotions. Active
// promotions are cached in Redis and invalidated on every promotion write.
type SettingsService struct {
	store  *store.Store
	redis  *redisclient.Client
	logger *zap.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(store *store.Store, redis *redisclient.Client) *SettingsService {
	return &SettingsService{
		store:  store,
		redis:  redis,
		logger: util.GetLogger(),
	}
}

// Settings loads the whole configuration map.
func (ss *SettingsService) Settings(ctx context.Context) (map[string]string, error) {
	return ss.store.GetSettings(ctx)
}

// UpdateSetting creates or replaces one setting value.
func (ss *SettingsService) UpdateSetting(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("setting key must not be empty: %w", errs.ErrValidation)
	}
	return ss.store.UpsertSetting(ctx, key, value)
}

// ShippingRules lists every shipping rule.
func (ss *SettingsService) ShippingRules(ctx context.Context) ([]models.ShippingRule, error) {
	return ss.store.GetShippingRules(ctx)
}

// ActiveShippingRules lists only the rules available at checkout.
func (ss *SettingsService) ActiveShippingRules(ctx context.Context) ([]models.ShippingRule, error) {
	rules, err := ss.store.GetShippingRules(ctx)
	if err != nil {
		return nil, err
	}

	active := rules[:0]
	for _, rule := range rules {
		if rule.Status == models.ShippingStatusActive {
			active = append(active, rule)
		}
	}
	return active, nil
}

// UpsertShippingRule creates or replaces the rule for a province.
func (ss *SettingsService) UpsertShippingRule(ctx context.Context, rule *models.ShippingRule) error {
	if rule.Province == "" {
		return fmt.Errorf("province must not be empty: %w", errs.ErrValidation)
	}
	if rule.Cost < 0 {
		return fmt.Errorf("shipping cost must not be negative: %w", errs.ErrValidation)
	}
	if rule.Status == "" {
		rule.Status = models.ShippingStatusActive
	}
	return ss.store.UpsertShippingRule(ctx, rule)
}

// SocialLinks lists social links, optionally narrowed to a display location.
func (ss *SettingsService) SocialLinks(ctx context.Context, display string) ([]models.SocialLink, error) {
	return ss.store.GetSocialLinks(ctx, display)
}

// SaveSocialLink creates or updates a social link.
func (ss *SettingsService) SaveSocialLink(ctx context.Context, link *models.SocialLink) error {
	if link.Platform == "" || link.URL == "" {
		return fmt.Errorf("platform and url are required: %w", errs.ErrValidation)
	}
	return ss.store.UpsertSocialLink(ctx, link)
}

// ActivePromotions returns the promotions whose window covers now, served
// from the Redis blob when present.
func (ss *SettingsService) ActivePromotions(ctx context.Context) ([]models.Promotion, error) {
	cached, hit, err := ss.redis.GetCachedPromotions(ctx)
	if err != nil {
		ss.logger.Warn("Promotion cache read failed, falling back to store", zap.Error(err))
	} else if hit {
		return cached, nil
	}

	promotions, err := ss.store.GetActivePromotions(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to load promotions: %w", err)
	}

	if err := ss.redis.CacheActivePromotions(ctx, promotions); err != nil {
		ss.logger.Warn("Failed to cache promotions", zap.Error(err))
	}
	return promotions, nil
}

// Promotions lists every promotion for the admin view.
func (ss *SettingsService) Promotions(ctx context.Context) ([]models.Promotion, error) {
	return ss.store.GetPromotions(ctx)
}

// CreatePromotion inserts a promotion and drops the cached blob.
func (ss *SettingsService) CreatePromotion(ctx context.Context, p *models.Promotion) error {
	if err := validatePromotion(p); err != nil {
		return err
	}
	if err := ss.store.CreatePromotion(ctx, p); err != nil {
		return fmt.Errorf("failed to create promotion: %w", err)
	}
	ss.invalidatePromotions(ctx)
	return nil
}

// UpdatePromotion replaces a promotion and drops the cached blob.
func (ss *SettingsService) UpdatePromotion(ctx context.Context, p *models.Promotion) error {
	if err := validatePromotion(p); err != nil {
		return err
	}
	if err := ss.store.UpdatePromotion(ctx, p); err != nil {
		return err
	}
	ss.invalidatePromotions(ctx)
	return nil
}

func (ss *SettingsService) invalidatePromotions(ctx context.Context) {
	if err := ss.redis.InvalidatePromotions(ctx); err != nil {
		ss.logger.Warn("Failed to invalidate promotion cache", zap.Error(err))
	}
}

func validatePromotion(p *models.Promotion) error {
	if p.Title == "" {
		return fmt.Errorf("promotion title is required: %w", errs.ErrValidation)
	}
	if p.EndDate.Before(p.StartDate) {
		return fmt.Errorf("promotion window ends before it starts: %w", errs.ErrValidation)
	}
	if p.Type == "" {
		p.Type = "banner"
	}
	return nil
}
