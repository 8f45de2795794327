package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fixtrack/fixtrack/internal/config"
	"github.com/fixtrack/fixtrack/internal/service"
)

// LevelSweeper periodically reconciles stored engineer levels against the
// level table. Levels normally stay consistent through the award path; the
// sweep repairs drift after manual data fixes or table changes.
type LevelSweeper struct {
	cfg        config.WorkerConfig
	experience *service.ExperienceService
	logger     *zap.Logger
	cron       *cron.Cron
}

// NewLevelSweeper constructs the sweeper.
func NewLevelSweeper(cfg config.WorkerConfig, experience *service.ExperienceService, logger *zap.Logger) *LevelSweeper {
	return &LevelSweeper{
		cfg:        cfg,
		experience: experience,
		logger:     logger,
		cron:       cron.New(),
	}
}

// Start schedules the sweep and runs the cron loop in the background.
// It is a no-op when the sweep is disabled.
func (w *LevelSweeper) Start() error {
	if !w.cfg.LevelSweepEnabled {
		w.logger.Info("level sweep disabled")
		return nil
	}
	_, err := w.cron.AddFunc(w.cfg.LevelSweepSchedule, w.runOnce)
	if err != nil {
		return err
	}
	w.cron.Start()
	w.logger.Info("level sweep scheduled", zap.String("schedule", w.cfg.LevelSweepSchedule))
	return nil
}

// Stop halts the cron loop and waits for a running sweep to finish.
func (w *LevelSweeper) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
}

func (w *LevelSweeper) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	fixed, err := w.experience.RecalculateLevels(ctx)
	if err != nil {
		w.logger.Error("level sweep failed", zap.Error(err))
		return
	}
	if fixed > 0 {
		w.logger.Info("level sweep repaired engineers", zap.Int("fixed", fixed))
	}
}
