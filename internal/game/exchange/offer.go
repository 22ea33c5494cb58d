// Package exchange implements the item exchange: per-character offer
// slots, a price-time priority order book, escrow and buy limits.
package exchange

import (
	"errors"
	"time"
)

// Offer kinds.
const (
	KindBuy  = "buy"
	KindSell = "sell"
)

// Offer statuses. Terminal statuses never transition back to active.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusExpired   = "expired"
)

// SlotsPerCharacter is the default number of concurrent offers one
// character may hold; config max_active_offers overrides it.
const SlotsPerCharacter = 8

var (
	ErrNoAvailableSlot   = errors.New("exchange: NO_AVAILABLE_SLOT")
	ErrBuyLimitExceeded  = errors.New("exchange: BUY_LIMIT_EXCEEDED")
	ErrNotTradeable      = errors.New("exchange: item not tradeable")
	ErrBadQuantity       = errors.New("exchange: bad quantity")
	ErrBadPrice          = errors.New("exchange: bad price")
	ErrInsufficientGold  = errors.New("exchange: insufficient gold")
	ErrInsufficientItems = errors.New("exchange: insufficient items")
	ErrNotOwner          = errors.New("exchange: not offer owner")
	ErrOfferNotFound     = errors.New("exchange: offer not found")
	ErrOfferNotActive    = errors.New("exchange: offer not active")
	ErrNothingToCollect  = errors.New("exchange: nothing to collect")
)

// Offer is one exchange order. Escrow is implicit: an active buy holds
// (total − filled) × price gold, an active sell holds (total − filled)
// items.
type Offer struct {
	ID      string
	OwnerID int64
	Kind    string
	ItemID  int32

	QuantityTotal  int32
	QuantityFilled int32
	Price          int32 // per unit

	Status string
	Slot   int

	// CreatedSeq orders offers at equal price (time priority).
	CreatedSeq uint64
	CreatedAt  time.Time

	// PendingItems are matched or returned items awaiting collection.
	PendingItems int32
}

// Remaining is the unfilled quantity.
func (o *Offer) Remaining() int32 {
	return o.QuantityTotal - o.QuantityFilled
}

// Active reports whether the offer can still match.
func (o *Offer) Active() bool {
	return o.Status == StatusActive
}

// Transaction records one match between a buy and a sell offer. The price
// is the resting offer's price at match time.
type Transaction struct {
	ID          string
	BuyOfferID  string
	SellOfferID string
	ItemID      int32
	Quantity    int32
	Price       int32
	TotalValue  int64
	At          time.Time
}
