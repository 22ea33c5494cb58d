package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/runeward/server/internal/core/system"
	"github.com/runeward/server/internal/handler"
)

const (
	saveEvery       = 15 * time.Second
	highscoreEvery  = 15 * time.Minute
	houseKeepEvery  = time.Hour
	persistDeadline = 10 * time.Second
)

// Persist periodically writes dirty characters and runs the slower
// maintenance chores: highscore refresh, flag pruning and deleted-character
// cleanup.
type Persist struct {
	deps *handler.Deps

	lastSave      time.Time
	lastHighscore time.Time
	lastHouseKeep time.Time
}

func NewPersist(deps *handler.Deps) *Persist {
	now := time.Now()
	return &Persist{
		deps:          deps,
		lastSave:      now,
		lastHighscore: now,
		lastHouseKeep: now,
	}
}

func (s *Persist) Phase() system.Phase { return system.PhasePersist }

func (s *Persist) Update(dt time.Duration) {
	now := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), persistDeadline)
	defer cancel()

	if now.Sub(s.lastSave) >= saveEvery {
		s.lastSave = now
		if saved := s.deps.SaveDirty(ctx); saved > 0 {
			s.deps.Log.Debug("periodic save", zap.Int("characters", saved))
		}
	}

	if now.Sub(s.lastHighscore) >= highscoreEvery {
		s.lastHighscore = now
		// Concurrent refresh; safe to run while the shard serves reads.
		go func() {
			refreshCtx, refreshCancel := context.WithTimeout(context.Background(), time.Minute)
			defer refreshCancel()
			if err := s.deps.Highscores.Refresh(refreshCtx); err != nil {
				s.deps.Log.Warn("highscore refresh failed", zap.Error(err))
			}
		}()
	}

	if now.Sub(s.lastHouseKeep) >= houseKeepEvery {
		s.lastHouseKeep = now
		retention := time.Duration(s.deps.Config.Validation.FlagRetentionDays) * 24 * time.Hour
		go func() {
			hkCtx, hkCancel := context.WithTimeout(context.Background(), time.Minute)
			defer hkCancel()
			if n, err := s.deps.AuditRepo.PruneFlags(hkCtx, retention); err != nil {
				s.deps.Log.Warn("flag prune failed", zap.Error(err))
			} else if n > 0 {
				s.deps.Log.Info("pruned flags", zap.Int64("rows", n))
			}
			if n, err := s.deps.CharRepo.CleanExpiredDeletions(hkCtx); err != nil {
				s.deps.Log.Warn("deletion cleanup failed", zap.Error(err))
			} else if n > 0 {
				s.deps.Log.Info("removed expired characters", zap.Int64("rows", n))
			}
		}()
	}
}
