package persist

import (
	"context"

	"go.uber.org/zap"

	"github.com/runeward/server/internal/game/exchange"
)

type OfferRepo struct {
	db *DB
}

func NewOfferRepo(db *DB) *OfferRepo {
	return &OfferRepo{db: db}
}

// Upsert writes an offer's current state.
func (r *OfferRepo) Upsert(ctx context.Context, o *exchange.Offer) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO ge_offers
			(id, character_id, kind, item_id, quantity_total, quantity_filled,
			 price, status, slot, pending_items, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		 ON CONFLICT (id) DO UPDATE SET
			quantity_filled = EXCLUDED.quantity_filled,
			status          = EXCLUDED.status,
			pending_items   = EXCLUDED.pending_items,
			updated_at      = NOW()`,
		o.ID, o.OwnerID, o.Kind, o.ItemID, o.QuantityTotal, o.QuantityFilled,
		o.Price, o.Status, o.Slot, o.PendingItems, o.CreatedAt,
	)
	return err
}

// RecordTransaction satisfies exchange.TxSink for durable match history.
func (r *OfferRepo) RecordTransaction(tx exchange.Transaction) {
	// Fire-and-forget from the simulation goroutine.
	go func() {
		_, err := r.db.Pool.Exec(context.Background(),
			`INSERT INTO ge_transactions
				(id, buy_offer_id, sell_offer_id, item_id, quantity, price, total_value, created_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			tx.ID, tx.BuyOfferID, tx.SellOfferID, tx.ItemID, tx.Quantity, tx.Price, tx.TotalValue, tx.At,
		)
		if err != nil {
			r.db.log.Warn("record ge transaction failed",
				zap.String("tx", tx.ID), zap.Error(err))
		}
	}()
}

// LoadActive returns all non-terminal offers, used to rebuild the book on
// boot.
func (r *OfferRepo) LoadActive(ctx context.Context) ([]exchange.Offer, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, character_id, kind, item_id, quantity_total, quantity_filled,
		        price, status, slot, pending_items, created_at
		 FROM ge_offers WHERE status = 'active' OR pending_items > 0
		 ORDER BY created_at`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []exchange.Offer
	for rows.Next() {
		var o exchange.Offer
		if err := rows.Scan(
			&o.ID, &o.OwnerID, &o.Kind, &o.ItemID, &o.QuantityTotal, &o.QuantityFilled,
			&o.Price, &o.Status, &o.Slot, &o.PendingItems, &o.CreatedAt,
		); err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}
