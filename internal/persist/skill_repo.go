package persist

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/runeward/server/internal/game/skill"
)

type SkillRepo struct {
	db *DB
}

func NewSkillRepo(db *DB) *SkillRepo {
	return &SkillRepo{db: db}
}

// LoadSheet reads a character's skill rows into a fresh sheet so skills
// added since the character was created pick up their defaults.
func (r *SkillRepo) LoadSheet(ctx context.Context, charID int64) (map[string]*skill.State, error) {
	sheet := skill.NewSheet()
	rows, err := r.db.Pool.Query(ctx,
		`SELECT skill, level, xp FROM character_skills WHERE character_id = $1`, charID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var level int
		var xp int64
		if err := rows.Scan(&name, &level, &xp); err != nil {
			return nil, err
		}
		if st, ok := sheet[name]; ok {
			st.Level = level
			st.XP = xp
		}
	}
	return sheet, rows.Err()
}

// SaveSheet upserts every skill row for a character in one batch.
func (r *SkillRepo) SaveSheet(ctx context.Context, charID int64, sheet map[string]*skill.State) error {
	batch := &pgx.Batch{}
	for name, st := range sheet {
		batch.Queue(
			`INSERT INTO character_skills (character_id, skill, level, xp)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (character_id, skill)
			 DO UPDATE SET level = EXCLUDED.level, xp = EXCLUDED.xp`,
			charID, name, st.Level, st.XP,
		)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range sheet {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
