package persist

import (
	"context"

	"github.com/runeward/server/internal/game/inventory"
)

// Container names in character_items rows.
const (
	ContainerBackpack  = "backpack"
	ContainerBank      = "bank"
	ContainerEquipment = "equipment"
)

type ItemRepo struct {
	db *DB
}

func NewItemRepo(db *DB) *ItemRepo {
	return &ItemRepo{db: db}
}

// LoadContainers restores a character's backpack, bank and equipment into
// the provided (empty) containers.
func (r *ItemRepo) LoadContainers(ctx context.Context, charID int64,
	bp *inventory.Backpack, bank *inventory.Bank, eq *inventory.Equipment) error {

	rows, err := r.db.Pool.Query(ctx,
		`SELECT container, tab, slot, equip_slot, item_id, quantity, charges, custom
		 FROM character_items WHERE character_id = $1`, charID,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var container, equipSlot, custom string
		var tab, slot int
		var itemID, quantity, charges int32
		if err := rows.Scan(&container, &tab, &slot, &equipSlot, &itemID, &quantity, &charges, &custom); err != nil {
			return err
		}
		stack := &inventory.Stack{ItemID: itemID, Quantity: quantity, Charges: charges, Custom: custom}
		switch container {
		case ContainerBackpack:
			bp.SetSlot(slot, stack)
		case ContainerBank:
			bank.SetSlot(tab, slot, stack)
		case ContainerEquipment:
			eq.SetSlot(equipSlot, stack)
		}
	}
	return rows.Err()
}

// SaveContainers rewrites a character's item rows in one transaction.
func (r *ItemRepo) SaveContainers(ctx context.Context, charID int64,
	bp *inventory.Backpack, bank *inventory.Bank, eq *inventory.Equipment) error {

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM character_items WHERE character_id = $1`, charID); err != nil {
		return err
	}

	const insert = `INSERT INTO character_items
		(character_id, container, tab, slot, equip_slot, item_id, quantity, charges, custom)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

	for slot, s := range bp.Slots() {
		if s == nil {
			continue
		}
		if _, err := tx.Exec(ctx, insert,
			charID, ContainerBackpack, 0, slot, "", s.ItemID, s.Quantity, s.Charges, s.Custom); err != nil {
			return err
		}
	}
	for tab := 0; tab < inventory.BankTabs; tab++ {
		for slot, s := range bank.Tab(tab) {
			if s == nil {
				continue
			}
			if _, err := tx.Exec(ctx, insert,
				charID, ContainerBank, tab, slot, "", s.ItemID, s.Quantity, s.Charges, s.Custom); err != nil {
				return err
			}
		}
	}
	for equipSlot, s := range eq.Worn() {
		if s == nil {
			continue
		}
		if _, err := tx.Exec(ctx, insert,
			charID, ContainerEquipment, 0, 0, equipSlot, s.ItemID, s.Quantity, s.Charges, s.Custom); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
