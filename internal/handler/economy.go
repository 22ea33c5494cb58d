package handler

import (
	"errors"

	"github.com/runeward/server/internal/world"
)

// WorldWallet adapts in-world character gold to the exchange wallet
// interface. Characters not in world cannot be debited, but credits for
// offline sellers go through the ledgered balance on next save, so GiveGold
// falls back to a direct row update.
type WorldWallet struct {
	World *world.State
	// CreditOffline receives gold for characters not currently in world.
	CreditOffline func(charID int64, amount int64)
}

var errNotInWorld = errors.New("character not in world")

func (w *WorldWallet) TakeGold(charID int64, amount int64) error {
	p := w.World.Player(charID)
	if p == nil {
		return errNotInWorld
	}
	if p.Gold < amount {
		return errors.New("insufficient gold")
	}
	p.Gold -= amount
	p.Dirty = true
	return nil
}

func (w *WorldWallet) GiveGold(charID int64, amount int64) {
	p := w.World.Player(charID)
	if p == nil {
		if w.CreditOffline != nil {
			w.CreditOffline(charID, amount)
		}
		return
	}
	p.Gold += amount
	p.Dirty = true
}

// WorldItems adapts backpack stacks to the exchange item escrow interface.
type WorldItems struct {
	World *world.State
}

func (w *WorldItems) TakeItems(charID int64, itemID, quantity int32) error {
	p := w.World.Player(charID)
	if p == nil {
		return errNotInWorld
	}
	if err := p.Backpack.Remove(itemID, quantity); err != nil {
		return err
	}
	p.Dirty = true
	return nil
}

func (w *WorldItems) GiveItems(charID int64, itemID, quantity int32) error {
	p := w.World.Player(charID)
	if p == nil {
		return errNotInWorld
	}
	if err := p.Backpack.Add(itemID, quantity); err != nil {
		return err
	}
	p.Dirty = true
	return nil
}
