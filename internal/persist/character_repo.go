package persist

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

type CharacterRow struct {
	ID         int64
	AccountID  int64
	Name       string
	GameMode   string
	Appearance []byte
	PosX       float64
	PosY       float64
	PosZ       float64
	Rotation   float64
	ZoneID     int32
	Health     int32
	MaxHealth  int32
	Gold       int64
	GuildID    int64
	CreatedAt  time.Time
	LastLogin  *time.Time
	DeletedAt  *time.Time
}

type CharacterRepo struct {
	db *DB
}

func NewCharacterRepo(db *DB) *CharacterRepo {
	return &CharacterRepo{db: db}
}

const characterColumns = `id, account_id, name, game_mode, appearance,
        pos_x, pos_y, pos_z, rotation, zone_id,
        health, max_health, gold, guild_id,
        created_at, last_login, deleted_at`

func scanCharacter(row pgx.Row, c *CharacterRow) error {
	return row.Scan(
		&c.ID, &c.AccountID, &c.Name, &c.GameMode, &c.Appearance,
		&c.PosX, &c.PosY, &c.PosZ, &c.Rotation, &c.ZoneID,
		&c.Health, &c.MaxHealth, &c.Gold, &c.GuildID,
		&c.CreatedAt, &c.LastLogin, &c.DeletedAt,
	)
}

func (r *CharacterRepo) LoadByAccount(ctx context.Context, accountID int64) ([]CharacterRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+characterColumns+`
		 FROM characters
		 WHERE account_id = $1 AND deleted_at IS NULL
		 ORDER BY id`, accountID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CharacterRow
	for rows.Next() {
		var c CharacterRow
		if err := scanCharacter(rows, &c); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *CharacterRepo) LoadByID(ctx context.Context, id int64) (*CharacterRow, error) {
	c := &CharacterRow{}
	err := scanCharacter(r.db.Pool.QueryRow(ctx,
		`SELECT `+characterColumns+`
		 FROM characters WHERE id = $1 AND deleted_at IS NULL`, id,
	), c)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CharacterRepo) Create(ctx context.Context, c *CharacterRow) error {
	if c.Appearance == nil {
		c.Appearance = []byte(`{}`)
	}
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO characters (
			account_id, name, game_mode, appearance,
			pos_x, pos_y, pos_z, rotation, zone_id,
			health, max_health, gold, guild_id
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING id, created_at`,
		c.AccountID, c.Name, c.GameMode, c.Appearance,
		c.PosX, c.PosY, c.PosZ, c.Rotation, c.ZoneID,
		c.Health, c.MaxHealth, c.Gold, c.GuildID,
	).Scan(&c.ID, &c.CreatedAt)
}

func (r *CharacterRepo) NameExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM characters WHERE LOWER(name) = LOWER($1))`, name,
	).Scan(&exists)
	return exists, err
}

func (r *CharacterRepo) CountByAccount(ctx context.Context, accountID int64) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM characters WHERE account_id = $1 AND deleted_at IS NULL`,
		accountID,
	).Scan(&count)
	return count, err
}

// SoftDelete hides the character now and leaves a week-long undo window
// before the cleanup pass removes it.
func (r *CharacterRepo) SoftDelete(ctx context.Context, id, accountID int64) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE characters SET deleted_at = NOW() + INTERVAL '7 days'
		 WHERE id = $1 AND account_id = $2 AND deleted_at IS NULL`,
		id, accountID,
	)
	return err
}

func (r *CharacterRepo) CleanExpiredDeletions(ctx context.Context) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM characters WHERE deleted_at IS NOT NULL AND deleted_at <= NOW()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// AddGold credits a character directly in storage, used when the recipient
// is offline.
func (r *CharacterRepo) AddGold(ctx context.Context, id, amount int64) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE characters SET gold = gold + $2 WHERE id = $1`, id, amount)
	return err
}

func (r *CharacterRepo) TouchLogin(ctx context.Context, id int64) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE characters SET last_login = NOW() WHERE id = $1`, id)
	return err
}

// Save updates every mutable character field.
func (r *CharacterRepo) Save(ctx context.Context, c *CharacterRow) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE characters SET
			pos_x = $1, pos_y = $2, pos_z = $3, rotation = $4, zone_id = $5,
			health = $6, max_health = $7, gold = $8, guild_id = $9, game_mode = $10
		 WHERE id = $11`,
		c.PosX, c.PosY, c.PosZ, c.Rotation, c.ZoneID,
		c.Health, c.MaxHealth, c.Gold, c.GuildID, c.GameMode,
		c.ID,
	)
	return err
}
