package persist

import "context"

type HighscoreRow struct {
	CharacterID int64
	Name        string
	GameMode    string
	TotalLevel  int64
	TotalXP     int64
}

type HighscoreRepo struct {
	db *DB
}

func NewHighscoreRepo(db *DB) *HighscoreRepo {
	return &HighscoreRepo{db: db}
}

// Refresh rebuilds the materialized view. Called from the periodic sweep.
func (r *HighscoreRepo) Refresh(ctx context.Context) error {
	_, err := r.db.Pool.Exec(ctx,
		`REFRESH MATERIALIZED VIEW CONCURRENTLY highscores`)
	return err
}

// Top returns the leading characters by total level, then total XP.
func (r *HighscoreRepo) Top(ctx context.Context, limit int) ([]HighscoreRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT character_id, name, game_mode, total_level, total_xp
		 FROM highscores
		 ORDER BY total_level DESC, total_xp DESC
		 LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HighscoreRow
	for rows.Next() {
		var h HighscoreRow
		if err := rows.Scan(&h.CharacterID, &h.Name, &h.GameMode, &h.TotalLevel, &h.TotalXP); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
