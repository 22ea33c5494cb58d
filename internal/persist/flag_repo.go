package persist

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/runeward/server/internal/game/chat"
	"github.com/runeward/server/internal/validate"
)

// AuditRepo stores anti-cheat flags, the chat audit log and resource node
// state. Writes are fire-and-forget off the simulation goroutine.
type AuditRepo struct {
	db *DB
}

func NewAuditRepo(db *DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// RecordFlag satisfies validate.FlagSink.
func (r *AuditRepo) RecordFlag(rec validate.FlagRecord) {
	go func() {
		_, err := r.db.Pool.Exec(context.Background(),
			`INSERT INTO anticheat_flags (character_id, kind, severity, details, session_id, created_at)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			rec.CharacterID, rec.Kind, rec.Severity.String(), rec.Details, rec.SessionID, rec.At,
		)
		if err != nil {
			r.db.log.Warn("record flag failed",
				zap.Int64("character", rec.CharacterID), zap.Error(err))
		}
	}()
}

// RecordChat satisfies chat.Audit.
func (r *AuditRepo) RecordChat(entry chat.LogEntry) {
	go func() {
		_, err := r.db.Pool.Exec(context.Background(),
			`INSERT INTO chat_log (character_id, channel, message, recipient, created_at)
			 VALUES ($1,$2,$3,$4,$5)`,
			entry.CharacterID, entry.Channel, entry.Text, entry.To, entry.At,
		)
		if err != nil {
			r.db.log.Warn("record chat failed",
				zap.Int64("character", entry.CharacterID), zap.Error(err))
		}
	}()
}

// RecordNodeState satisfies resource.StateSink with write-through depletion
// state.
func (r *AuditRepo) RecordNodeState(nodeID int64, depleted bool, respawnAtMs uint64) {
	go func() {
		_, err := r.db.Pool.Exec(context.Background(),
			`INSERT INTO resource_nodes (node_id, depleted, respawn_at_ms, updated_at)
			 VALUES ($1,$2,$3,NOW())
			 ON CONFLICT (node_id) DO UPDATE SET
				depleted = EXCLUDED.depleted,
				respawn_at_ms = EXCLUDED.respawn_at_ms,
				updated_at = NOW()`,
			nodeID, depleted, int64(respawnAtMs),
		)
		if err != nil {
			r.db.log.Warn("record node state failed",
				zap.Int64("node", nodeID), zap.Error(err))
		}
	}()
}

// LoadNodeStates returns the persisted depletion map for boot restore.
func (r *AuditRepo) LoadNodeStates(ctx context.Context) (map[int64]uint64, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT node_id, respawn_at_ms FROM resource_nodes WHERE depleted`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	states := make(map[int64]uint64)
	for rows.Next() {
		var nodeID, respawnAt int64
		if err := rows.Scan(&nodeID, &respawnAt); err != nil {
			return nil, err
		}
		states[nodeID] = uint64(respawnAt)
	}
	return states, rows.Err()
}

// PruneFlags drops flags older than the retention window.
func (r *AuditRepo) PruneFlags(ctx context.Context, retention time.Duration) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM anticheat_flags WHERE created_at < NOW() - $1::interval`,
		retention.String(),
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
