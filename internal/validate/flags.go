// Package validate is the server-side plausibility layer: movement checks,
// per-tick action budgets and the anti-cheat flag ledger.
package validate

import "time"

// Flag kinds raised by the validators.
const (
	FlagSpeedHack      = "SPEED_HACK"
	FlagTeleportHack   = "TELEPORT_HACK"
	FlagWallClip       = "WALL_CLIP"
	FlagFlyHack        = "FLY_HACK"
	FlagTimeAnomaly    = "TIME_ANOMALY"
	FlagTickBudget     = "TICK_BUDGET_EXCEEDED"
	FlagCooldownBypass = "COOLDOWN_BYPASS"
	FlagReplayAttack   = "REPLAY_ATTACK"
	FlagBadSignature   = "SIGNATURE_MISMATCH"
	FlagBotMovement    = "BOT_MOVEMENT"
	FlagBotTiming      = "BOT_TIMING"
)

// Severity buckets for flag kinds.
type Severity uint8

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	}
	return "unknown"
}

// SeverityOf classifies a flag kind. Unknown kinds rank low.
func SeverityOf(kind string) Severity {
	switch kind {
	case FlagReplayAttack, FlagBadSignature:
		return SeverityCritical
	case FlagSpeedHack, FlagTeleportHack, FlagFlyHack:
		return SeverityHigh
	case FlagWallClip, FlagCooldownBypass, FlagTimeAnomaly:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Response is the enforcement outcome for a character's recent flags.
type Response uint8

const (
	ResponseLog Response = iota
	ResponseWarn
	ResponseKick
	ResponseTempBan
	ResponsePermBan
)

func (r Response) String() string {
	switch r {
	case ResponseLog:
		return "log"
	case ResponseWarn:
		return "warn"
	case ResponseKick:
		return "kick"
	case ResponseTempBan:
		return "temp_ban"
	case ResponsePermBan:
		return "perm_ban"
	}
	return "unknown"
}

// Thresholds are the per-severity counts that trigger escalation.
type Thresholds struct {
	Low      int
	Medium   int
	High     int
	Critical int
}

// Decide maps recent flag counts per severity to a response. Critical flags
// escalate immediately; lower severities are compared against thresholds in
// descending order.
func Decide(counts map[Severity]int, t Thresholds) Response {
	if counts[SeverityCritical] >= t.Critical {
		return ResponsePermBan
	}
	if counts[SeverityHigh] >= t.High {
		return ResponseTempBan
	}
	if counts[SeverityMedium] >= t.Medium {
		return ResponseKick
	}
	if counts[SeverityLow] >= t.Low {
		return ResponseWarn
	}
	return ResponseLog
}

// FlagRecord is one ledger entry.
type FlagRecord struct {
	CharacterID int64
	Kind        string
	Severity    Severity
	Details     string
	SessionID   string
	At          time.Time
}

// FlagSink receives flags for durable storage and audit.
type FlagSink interface {
	RecordFlag(rec FlagRecord)
}

// Ledger keeps the in-memory rolling hour of flags per character and
// forwards every flag to the sink.
type Ledger struct {
	recent map[int64][]FlagRecord
	sink   FlagSink
	window time.Duration
}

func NewLedger(sink FlagSink) *Ledger {
	return &Ledger{
		recent: make(map[int64][]FlagRecord),
		sink:   sink,
		window: time.Hour,
	}
}

// Raise records a flag and returns the enforcement response for the
// character's last hour of flags.
func (l *Ledger) Raise(charID int64, sessionID, kind, details string, now time.Time, t Thresholds) Response {
	rec := FlagRecord{
		CharacterID: charID,
		Kind:        kind,
		Severity:    SeverityOf(kind),
		Details:     details,
		SessionID:   sessionID,
		At:          now,
	}
	l.recent[charID] = append(l.prune(charID, now), rec)
	if l.sink != nil {
		l.sink.RecordFlag(rec)
	}

	counts := make(map[Severity]int, 4)
	for _, r := range l.recent[charID] {
		counts[r.Severity]++
	}
	return Decide(counts, t)
}

// Forget drops a character's in-memory flag history, used on logout.
func (l *Ledger) Forget(charID int64) {
	delete(l.recent, charID)
}

func (l *Ledger) prune(charID int64, now time.Time) []FlagRecord {
	recs := l.recent[charID]
	cutoff := now.Add(-l.window)
	i := 0
	for ; i < len(recs); i++ {
		if recs[i].At.After(cutoff) {
			break
		}
	}
	return recs[i:]
}
