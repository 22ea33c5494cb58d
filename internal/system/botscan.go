package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/runeward/server/internal/core/system"
	"github.com/runeward/server/internal/handler"
	"github.com/runeward/server/internal/validate"
)

// botScanEvery bounds how often the analytics pass runs over every in-world
// character.
const botScanEvery = 5 * time.Minute

// BotScan derives bot-review signals from accepted movement history and
// action timing. Signals are recorded for review only; no enforcement
// happens here.
type BotScan struct {
	deps     *handler.Deps
	lastScan time.Time
}

func NewBotScan(deps *handler.Deps) *BotScan {
	return &BotScan{deps: deps}
}

func (s *BotScan) Phase() system.Phase { return system.PhasePostUpdate }

func (s *BotScan) Update(dt time.Duration) {
	now := time.Now()
	if now.Sub(s.lastScan) < botScanEvery {
		return
	}
	s.lastScan = now

	for charID, p := range s.deps.World.Players() {
		rep := validate.Analyze(
			s.deps.Movement.History(charID),
			s.deps.Actions.ActionTimes(charID),
		)
		if !rep.Suspicious() {
			continue
		}
		s.deps.Log.Info("bot signal",
			zap.Int64("character", charID),
			zap.Bool("linear", rep.LinearMovement),
			zap.Bool("micro", rep.MicroMovement),
			zap.Bool("timing", rep.RoboticTiming),
			zap.Int("samples", rep.Samples),
		)
		if rep.LinearMovement || rep.MicroMovement {
			s.recordSignal(charID, p.SessionID, validate.FlagBotMovement, rep)
		}
		if rep.RoboticTiming {
			s.recordSignal(charID, p.SessionID, validate.FlagBotTiming, rep)
		}
	}
}

// recordSignal writes a low-severity review flag straight to the sink,
// bypassing the escalation ladder.
func (s *BotScan) recordSignal(charID int64, sessionID, kind string, rep validate.BotReport) {
	s.deps.AuditRepo.RecordFlag(validate.FlagRecord{
		CharacterID: charID,
		Kind:        kind,
		Severity:    validate.SeverityOf(kind),
		Details:     "automated review signal",
		SessionID:   sessionID,
		At:          time.Now(),
	})
}
