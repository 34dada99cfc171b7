package config

import (
	"context"
	"encoding/json"
	"time"

	"puntoventa/internal/core/apperror"
	"puntoventa/internal/core/types"
	"puntoventa/pkg/logger"
)

const (
	cacheKey = "company_config"
	cacheTTL = 10 * time.Minute
)

// Cache is the slice of caching the config service needs. A miss is
// reported as an error; any cache failure falls through to storage.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// AuditRecorder receives change notifications (best-effort).
type AuditRecorder interface {
	RecordUpdate(ctx context.Context, entity, entityID string, before, after any)
}

// UpdateInput carries the editable configuration fields plus the
// expected version.
type UpdateInput struct {
	BusinessName   string
	TaxID          string
	Address        string
	Phone          string
	Email          string
	CurrencySymbol string
	TaxPercent     types.Money
	InvoiceFooter  string
	LogoURL        string

	Version int
}

// Service reads and writes the business configuration with a cache in
// front of storage.
type Service struct {
	repo  Repository
	cache Cache
	audit AuditRecorder
}

func NewService(repo Repository, cache Cache, audit AuditRecorder) *Service {
	return &Service{repo: repo, cache: cache, audit: audit}
}

// Get returns the current configuration, falling back to defaults when
// none was ever saved. Cache failures are logged and ignored.
func (s *Service) Get(ctx context.Context) (*CompanyConfig, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey); err == nil {
			var c CompanyConfig
			if err := json.Unmarshal([]byte(raw), &c); err == nil {
				return &c, nil
			}
			logger.Warn(ctx, "invalid cached configuration, falling back to storage")
		}
	}

	c, err := s.repo.Get(ctx)
	if apperror.IsNotFound(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}

	s.fillCache(ctx, c)
	return c, nil
}

// Update validates and persists new settings, then invalidates the cache.
func (s *Service) Update(ctx context.Context, in UpdateInput) (*CompanyConfig, error) {
	before, err := s.repo.Get(ctx)
	if apperror.IsNotFound(err) {
		before = Default()
	} else if err != nil {
		return nil, err
	}
	if before.Version != in.Version {
		return nil, apperror.NewConflict("configuration was modified by another operation")
	}

	c := &CompanyConfig{
		BusinessName:   in.BusinessName,
		TaxID:          in.TaxID,
		Address:        in.Address,
		Phone:          in.Phone,
		Email:          in.Email,
		CurrencySymbol: in.CurrencySymbol,
		TaxPercent:     in.TaxPercent,
		InvoiceFooter:  in.InvoiceFooter,
		LogoURL:        in.LogoURL,
		Version:        before.Version + 1,
		UpdatedAt:      time.Now(),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, cacheKey); err != nil {
			logger.Warn(ctx, "failed to invalidate configuration cache", "error", err)
		}
	}
	if s.audit != nil {
		s.audit.RecordUpdate(ctx, "config", "company", before, c)
	}
	return c, nil
}

func (s *Service) fillCache(ctx context.Context, c *CompanyConfig) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey, string(raw), cacheTTL); err != nil {
		logger.Warn(ctx, "failed to cache configuration", "error", err)
	}
}
