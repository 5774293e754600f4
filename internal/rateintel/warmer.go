// internal/rateintel/warmer.go
package rateintel

import (
	"context"
	"fmt"
	"time"

	"talent-matching-workers/internal/common/logger"
	"talent-matching-workers/internal/models"

	"github.com/robfig/cron/v3"
)

type WarmerConfig struct {
	Schedule    string                   `mapstructure:"warm_schedule"`
	HotSegments []models.MarketRateQuery `mapstructure:"hot_segments"`
	TopN        int                      `mapstructure:"warm_top_n"`
	Timeout     time.Duration            `mapstructure:"warm_timeout"`
}

// Warmer periodically resolves hot segments so matching runs hit the cache.
type Warmer struct {
	supplier *Supplier
	store    Store
	config   WarmerConfig
	logger   logger.Logger
	cron     *cron.Cron
}

func NewWarmer(supplier *Supplier, store Store, cfg WarmerConfig, log logger.Logger) *Warmer {
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 15m"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &Warmer{
		supplier: supplier,
		store:    store,
		config:   cfg,
		logger:   log.WithFields(map[string]interface{}{"component": "rate-warmer"}),
		cron:     cron.New(),
	}
}

func (w *Warmer) Start() error {
	if _, err := w.cron.AddFunc(w.config.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), w.config.Timeout)
		defer cancel()
		w.WarmOnce(ctx)
	}); err != nil {
		return fmt.Errorf("invalid warm schedule %q: %w", w.config.Schedule, err)
	}
	w.cron.Start()
	w.logger.Info("Rate cache warmer started", map[string]interface{}{
		"schedule": w.config.Schedule,
	})
	return nil
}

// Stop waits for a running warm cycle to finish.
func (w *Warmer) Stop() {
	<-w.cron.Stop().Done()
}

// WarmOnce resolves configured and top segments and returns how many were
// warmed.
func (w *Warmer) WarmOnce(ctx context.Context) int {
	queries := append([]models.MarketRateQuery{}, w.config.HotSegments...)
	if w.config.TopN > 0 {
		keys, err := w.store.TopSegments(ctx, w.config.TopN)
		if err != nil {
			w.logger.Warn("Failed to list top segments", map[string]interface{}{"error": err.Error()})
		}
		for _, k := range keys {
			queries = append(queries, models.MarketRateQuery{
				SkillCategory:   k.SkillCategory,
				PrimarySkill:    k.PrimarySkill,
				ExperienceLevel: k.ExperienceLevel,
				Region:          k.Region,
			})
		}
	}

	warmed := 0
	seen := make(map[string]bool, len(queries))
	for _, q := range queries {
		id := q.Key().String()
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err := w.supplier.GetMarketRate(ctx, q); err != nil {
			w.logger.Warn("Failed to warm segment", map[string]interface{}{
				"segment": id,
				"error":   err.Error(),
			})
			continue
		}
		warmed++
	}
	w.logger.Debug("Rate cache warm cycle complete", map[string]interface{}{
		"warmed": warmed,
		"total":  len(seen),
	})
	return warmed
}
