package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testThresholds = Thresholds{Low: 100, Medium: 25, High: 5, Critical: 1}

type fakeFlagSink struct {
	recs []FlagRecord
}

func (s *fakeFlagSink) RecordFlag(rec FlagRecord) {
	s.recs = append(s.recs, rec)
}

func TestSeverityOf(t *testing.T) {
	assert.Equal(t, SeverityCritical, SeverityOf(FlagReplayAttack))
	assert.Equal(t, SeverityCritical, SeverityOf(FlagBadSignature))
	assert.Equal(t, SeverityHigh, SeverityOf(FlagSpeedHack))
	assert.Equal(t, SeverityHigh, SeverityOf(FlagTeleportHack))
	assert.Equal(t, SeverityHigh, SeverityOf(FlagFlyHack))
	assert.Equal(t, SeverityMedium, SeverityOf(FlagWallClip))
	assert.Equal(t, SeverityMedium, SeverityOf(FlagTimeAnomaly))
	assert.Equal(t, SeverityLow, SeverityOf(FlagBotMovement))
	assert.Equal(t, SeverityLow, SeverityOf("SOMETHING_NEW"))
}

func TestDecideLadder(t *testing.T) {
	assert.Equal(t, ResponseLog, Decide(map[Severity]int{}, testThresholds))
	assert.Equal(t, ResponseWarn, Decide(map[Severity]int{SeverityLow: 100}, testThresholds))
	assert.Equal(t, ResponseKick, Decide(map[Severity]int{SeverityMedium: 25}, testThresholds))
	assert.Equal(t, ResponseTempBan, Decide(map[Severity]int{SeverityHigh: 5}, testThresholds))
	assert.Equal(t, ResponsePermBan, Decide(map[Severity]int{SeverityCritical: 1}, testThresholds))

	// The highest severity crossing its threshold wins.
	assert.Equal(t, ResponsePermBan,
		Decide(map[Severity]int{SeverityCritical: 1, SeverityLow: 500}, testThresholds))
	assert.Equal(t, ResponseLog,
		Decide(map[Severity]int{SeverityHigh: 4, SeverityMedium: 24}, testThresholds))
}

func TestLedgerEscalates(t *testing.T) {
	sink := &fakeFlagSink{}
	l := NewLedger(sink)
	now := time.Now()

	for i := 0; i < 4; i++ {
		resp := l.Raise(1, "sess", FlagSpeedHack, "details", now.Add(time.Duration(i)*time.Second), testThresholds)
		assert.Equal(t, ResponseLog, resp)
	}
	resp := l.Raise(1, "sess", FlagSpeedHack, "details", now.Add(5*time.Second), testThresholds)
	assert.Equal(t, ResponseTempBan, resp)

	require.Len(t, sink.recs, 5)
	assert.Equal(t, int64(1), sink.recs[0].CharacterID)
	assert.Equal(t, SeverityHigh, sink.recs[0].Severity)
	assert.Equal(t, "sess", sink.recs[0].SessionID)
}

func TestLedgerCriticalIsImmediate(t *testing.T) {
	l := NewLedger(nil)
	resp := l.Raise(7, "sess", FlagReplayAttack, "nonce reuse", time.Now(), testThresholds)
	assert.Equal(t, ResponsePermBan, resp)
}

func TestLedgerPrunesOldFlags(t *testing.T) {
	l := NewLedger(nil)
	base := time.Now()

	for i := 0; i < 4; i++ {
		l.Raise(1, "sess", FlagSpeedHack, "details", base, testThresholds)
	}
	// Two hours later the old flags have aged out of the window, so this
	// fifth high flag stands alone.
	resp := l.Raise(1, "sess", FlagSpeedHack, "details", base.Add(2*time.Hour), testThresholds)
	assert.Equal(t, ResponseLog, resp)
}

func TestLedgerIsPerCharacter(t *testing.T) {
	l := NewLedger(nil)
	now := time.Now()

	for i := 0; i < 5; i++ {
		l.Raise(1, "sess", FlagSpeedHack, "details", now, testThresholds)
	}
	resp := l.Raise(2, "sess", FlagSpeedHack, "details", now, testThresholds)
	assert.Equal(t, ResponseLog, resp)

	l.Forget(1)
	resp = l.Raise(1, "sess", FlagSpeedHack, "details", now, testThresholds)
	assert.Equal(t, ResponseLog, resp)
}
