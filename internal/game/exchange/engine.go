package exchange

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/runeward/server/internal/config"
	"github.com/runeward/server/internal/data"
)

// Wallet moves gold in and out of a character's purse. TakeGold fails when
// the balance is insufficient; GiveGold always succeeds.
type Wallet interface {
	TakeGold(charID int64, amount int64) error
	GiveGold(charID int64, amount int64)
}

// Items moves stacks in and out of a character's containers. TakeItems
// fails when the character does not hold enough; GiveItems fails when
// nothing can accept the stack.
type Items interface {
	TakeItems(charID int64, itemID int32, quantity int32) error
	GiveItems(charID int64, itemID int32, quantity int32) error
}

// TxSink receives completed transactions for durable storage.
type TxSink interface {
	RecordTransaction(tx Transaction)
}

type limitKey struct {
	charID int64
	itemID int32
}

type limitWindow struct {
	windowStart int64
	count       int32
}

// Engine owns the live order book. All calls happen on the simulation
// goroutine.
type Engine struct {
	cfg    config.ExchangeConfig
	items  *data.ItemTable
	wallet Wallet
	stacks Items
	txs    TxSink
	log    *zap.Logger

	offers   map[string]*Offer
	slots    map[int64][]*Offer
	maxSlots int
	books    map[int32]*book
	windows  map[limitKey]*limitWindow

	seq uint64
	now func() time.Time
}

func NewEngine(cfg config.ExchangeConfig, items *data.ItemTable, wallet Wallet, stacks Items, txs TxSink, log *zap.Logger) *Engine {
	maxSlots := cfg.MaxActiveOffers
	if maxSlots <= 0 {
		maxSlots = SlotsPerCharacter
	}
	return &Engine{
		cfg:      cfg,
		items:    items,
		wallet:   wallet,
		stacks:   stacks,
		txs:      txs,
		log:      log,
		offers:   make(map[string]*Offer),
		slots:    make(map[int64][]*Offer),
		maxSlots: maxSlots,
		books:    make(map[int32]*book),
		windows:  make(map[limitKey]*limitWindow),
		now:      time.Now,
	}
}

// SetClock overrides the time source, used by tests.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Offer returns an offer by id, or nil.
func (e *Engine) Offer(id string) *Offer {
	return e.offers[id]
}

// OffersOf returns a character's offer slots (nil entries for free slots).
func (e *Engine) OffersOf(charID int64) []*Offer {
	if slots, ok := e.slots[charID]; ok {
		return slots
	}
	return make([]*Offer, e.maxSlots)
}

// Restore rebuilds the live book from stored offers on boot. Offers must
// arrive in creation order so price-time priority is preserved.
func (e *Engine) Restore(offers []Offer) {
	for i := range offers {
		o := offers[i]
		e.seq++
		o.CreatedSeq = e.seq
		e.offers[o.ID] = &o

		slots := e.slots[o.OwnerID]
		if slots == nil {
			slots = make([]*Offer, e.maxSlots)
			e.slots[o.OwnerID] = slots
		}
		if o.Slot >= 0 && o.Slot < len(slots) {
			slots[o.Slot] = &o
		}
		if o.Active() {
			e.bookFor(o.ItemID).add(&o)
		}
	}
}

// Create validates, escrows and books a new offer, then matches it
// immediately. The returned offer may already be partially or fully
// filled.
func (e *Engine) Create(ownerID int64, kind string, itemID, quantity, price int32) (*Offer, []Transaction, error) {
	if kind != KindBuy && kind != KindSell {
		return nil, nil, ErrBadQuantity
	}
	info := e.items.Get(itemID)
	if info == nil || !info.Tradeable {
		return nil, nil, ErrNotTradeable
	}
	if quantity < 1 || quantity > e.cfg.MaxQuantityPerItem {
		return nil, nil, ErrBadQuantity
	}
	if price < e.cfg.MinPricePerItem || price > e.cfg.MaxPricePerItem {
		return nil, nil, ErrBadPrice
	}

	slot := e.freeSlot(ownerID)
	if slot < 0 {
		return nil, nil, ErrNoAvailableSlot
	}

	now := e.now()
	if kind == KindBuy && info.BuyLimit > 0 {
		if e.windowCount(ownerID, itemID, now)+quantity > info.BuyLimit {
			return nil, nil, ErrBuyLimitExceeded
		}
	}

	// Escrow before booking so a failed reserve leaves no trace.
	if kind == KindBuy {
		if err := e.wallet.TakeGold(ownerID, int64(quantity)*int64(price)); err != nil {
			return nil, nil, ErrInsufficientGold
		}
	} else {
		if err := e.stacks.TakeItems(ownerID, itemID, quantity); err != nil {
			return nil, nil, ErrInsufficientItems
		}
	}

	e.seq++
	o := &Offer{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		Kind:          kind,
		ItemID:        itemID,
		QuantityTotal: quantity,
		Price:         price,
		Status:        StatusActive,
		Slot:          slot,
		CreatedSeq:    e.seq,
		CreatedAt:     now,
	}
	e.offers[o.ID] = o
	e.slots[ownerID][slot] = o
	e.bookFor(itemID).add(o)

	txs := e.match(o, now)
	return o, txs, nil
}

// Cancel stops an active offer and returns the unfilled escrow to the
// owner. Returned sell items that fit nowhere stay collectable.
func (e *Engine) Cancel(ownerID int64, offerID string) (*Offer, error) {
	o, ok := e.offers[offerID]
	if !ok {
		return nil, ErrOfferNotFound
	}
	if o.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	if !o.Active() {
		return nil, ErrOfferNotActive
	}
	e.retire(o, StatusCancelled)
	return o, nil
}

// Collect delivers an offer's pending items to the owner and retires the
// record once it is terminal with nothing left to deliver.
func (e *Engine) Collect(ownerID int64, offerID string) (int32, error) {
	o, ok := e.offers[offerID]
	if !ok {
		return 0, ErrOfferNotFound
	}
	if o.OwnerID != ownerID {
		return 0, ErrNotOwner
	}
	if o.PendingItems == 0 {
		// A terminal offer with nothing to deliver just retires its slot.
		if !o.Active() {
			e.forget(o)
			return 0, nil
		}
		return 0, ErrNothingToCollect
	}
	if err := e.stacks.GiveItems(ownerID, o.ItemID, o.PendingItems); err != nil {
		return 0, err
	}
	delivered := o.PendingItems
	o.PendingItems = 0
	if o.Status == StatusCompleted || o.Status == StatusCancelled || o.Status == StatusExpired {
		e.forget(o)
	}
	return delivered, nil
}

// ExpireBefore expires every active offer created before the cutoff,
// returning escrow like a cancel. Called from the periodic sweep.
func (e *Engine) ExpireBefore(cutoff time.Time) []*Offer {
	var expired []*Offer
	for _, o := range e.offers {
		if o.Active() && o.CreatedAt.Before(cutoff) {
			e.retire(o, StatusExpired)
			expired = append(expired, o)
		}
	}
	return expired
}

// match runs the incoming offer against resting opposite-side offers until
// it fills, candidates run out, or the per-offer match bound is hit.
func (e *Engine) match(incoming *Offer, now time.Time) []Transaction {
	bk := e.bookFor(incoming.ItemID)
	var txs []Transaction

	for _, resting := range bk.candidatesFor(incoming) {
		if incoming.Remaining() == 0 || len(txs) >= e.cfg.MaxMatchesPerOffer {
			break
		}
		if resting.OwnerID == incoming.OwnerID {
			continue
		}

		qty := incoming.Remaining()
		if r := resting.Remaining(); r < qty {
			qty = r
		}
		txPrice := resting.Price

		buy, sell := incoming, resting
		if incoming.Kind == KindSell {
			buy, sell = resting, incoming
		}

		// Seller is paid immediately; the buyer's items wait for collect.
		e.wallet.GiveGold(sell.OwnerID, int64(qty)*int64(txPrice))
		buy.PendingItems += qty

		// A buy above the resting price refunds the overbid at match time.
		if overbid := buy.Price - txPrice; overbid > 0 {
			e.wallet.GiveGold(buy.OwnerID, int64(overbid)*int64(qty))
		}

		e.addToWindow(buy.OwnerID, buy.ItemID, qty, now)

		incoming.QuantityFilled += qty
		resting.QuantityFilled += qty
		if resting.Remaining() == 0 {
			resting.Status = StatusCompleted
			bk.remove(resting)
		}

		tx := Transaction{
			ID:          uuid.NewString(),
			BuyOfferID:  buy.ID,
			SellOfferID: sell.ID,
			ItemID:      incoming.ItemID,
			Quantity:    qty,
			Price:       txPrice,
			TotalValue:  int64(qty) * int64(txPrice),
			At:          now,
		}
		txs = append(txs, tx)
		if e.txs != nil {
			e.txs.RecordTransaction(tx)
		}
	}

	if incoming.Remaining() == 0 {
		incoming.Status = StatusCompleted
		bk.remove(incoming)
	}
	if len(txs) > 0 && e.log != nil {
		e.log.Debug("offer matched",
			zap.String("offer", incoming.ID),
			zap.Int("matches", len(txs)),
			zap.Int32("filled", incoming.QuantityFilled))
	}
	return txs
}

// retire moves an active offer into a terminal state and returns escrow.
func (e *Engine) retire(o *Offer, status string) {
	e.bookFor(o.ItemID).remove(o)
	o.Status = status

	remaining := o.Remaining()
	if remaining > 0 {
		if o.Kind == KindBuy {
			e.wallet.GiveGold(o.OwnerID, int64(remaining)*int64(o.Price))
		} else {
			if err := e.stacks.GiveItems(o.OwnerID, o.ItemID, remaining); err != nil {
				// No room; leave the items collectable on the record.
				o.PendingItems += remaining
			}
		}
	}
	if o.PendingItems == 0 {
		e.forget(o)
	}
}

func (e *Engine) forget(o *Offer) {
	delete(e.offers, o.ID)
	if slots := e.slots[o.OwnerID]; o.Slot >= 0 && o.Slot < len(slots) && slots[o.Slot] == o {
		slots[o.Slot] = nil
	}
	if bk := e.books[o.ItemID]; bk != nil && bk.empty() {
		delete(e.books, o.ItemID)
	}
}

func (e *Engine) freeSlot(ownerID int64) int {
	slots := e.slots[ownerID]
	if slots == nil {
		slots = make([]*Offer, e.maxSlots)
		e.slots[ownerID] = slots
	}
	for i, o := range slots {
		if o == nil {
			return i
		}
	}
	return -1
}

func (e *Engine) bookFor(itemID int32) *book {
	bk, ok := e.books[itemID]
	if !ok {
		bk = &book{}
		e.books[itemID] = bk
	}
	return bk
}

func (e *Engine) windowStart(now time.Time) int64 {
	return now.UnixMilli() / e.cfg.BuyLimitWindow.Milliseconds()
}

func (e *Engine) windowCount(charID int64, itemID int32, now time.Time) int32 {
	w := e.windows[limitKey{charID, itemID}]
	if w == nil || w.windowStart != e.windowStart(now) {
		return 0
	}
	return w.count
}

func (e *Engine) addToWindow(charID int64, itemID int32, qty int32, now time.Time) {
	key := limitKey{charID, itemID}
	start := e.windowStart(now)
	w := e.windows[key]
	if w == nil || w.windowStart != start {
		w = &limitWindow{windowStart: start}
		e.windows[key] = w
	}
	w.count += qty
}
