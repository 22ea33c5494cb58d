package handler

import (
	"time"

	"go.uber.org/zap"

	"github.com/runeward/server/internal/game/exchange"
	"github.com/runeward/server/internal/metrics"
	"github.com/runeward/server/internal/net"
	"github.com/runeward/server/internal/protocol"
	"github.com/runeward/server/internal/validate"
	"github.com/runeward/server/internal/world"
)

// HandleGECreate books a new exchange offer and reports the immediate match
// outcome. Restricted game modes cannot trade.
func (d *Deps) HandleGECreate(sess *net.Session, payload []byte) {
	var req protocol.GECreateOffer
	if err := protocol.Decode(payload, &req); err != nil {
		d.sendError(sess, "BAD_REQUEST", "")
		return
	}
	p := d.World.Player(sess.CharID)
	if p == nil {
		return
	}
	if p.GameMode != world.ModeNormal {
		d.sendError(sess, "GAME_MODE_RESTRICTED", p.GameMode)
		return
	}

	nowMs := time.Now().UnixMilli()
	if rej := d.Actions.Check(p.CharacterID, validate.ActionGEOperation, "", nowMs); rej != nil {
		d.sendRejected(sess, rej.Kind, rej.RemainingMs)
		return
	}

	o, txs, err := d.Exchange.Create(p.CharacterID, req.Kind, req.ItemID, req.Quantity, req.Price)
	if err != nil {
		d.sendError(sess, "OFFER_REJECTED", err.Error())
		return
	}
	metrics.ExchangeMatches.Add(float64(len(txs)))

	d.PersistOffer(o)
	d.NotifyOffer(o)

	// Resting counterparties learn about their fills too.
	for _, tx := range txs {
		counterID := tx.BuyOfferID
		if o.Kind == exchange.KindBuy {
			counterID = tx.SellOfferID
		}
		if counter := d.Exchange.Offer(counterID); counter != nil {
			d.PersistOffer(counter)
			d.NotifyOffer(counter)
		}
	}

	d.Log.Info("exchange offer created",
		zap.Int64("character", p.CharacterID),
		zap.String("offer", o.ID),
		zap.String("kind", o.Kind),
		zap.Int32("item", o.ItemID),
		zap.Int32("quantity", o.QuantityTotal),
		zap.Int32("price", o.Price),
		zap.Int("matches", len(txs)),
	)
}

// HandleGECancel stops an active offer and refunds the unfilled escrow.
func (d *Deps) HandleGECancel(sess *net.Session, payload []byte) {
	var req protocol.GECancelOffer
	if err := protocol.Decode(payload, &req); err != nil {
		d.sendError(sess, "BAD_REQUEST", "")
		return
	}
	o, err := d.Exchange.Cancel(sess.CharID, req.OfferID)
	if err != nil {
		d.sendError(sess, "CANCEL_FAILED", err.Error())
		return
	}
	d.PersistOffer(o)
	d.NotifyOffer(o)
}

// HandleGECollect delivers an offer's pending items to the owner.
func (d *Deps) HandleGECollect(sess *net.Session, payload []byte) {
	var req protocol.GECollect
	if err := protocol.Decode(payload, &req); err != nil {
		d.sendError(sess, "BAD_REQUEST", "")
		return
	}
	o := d.Exchange.Offer(req.OfferID)
	if _, err := d.Exchange.Collect(sess.CharID, req.OfferID); err != nil {
		d.sendError(sess, "COLLECT_FAILED", err.Error())
		return
	}
	if o != nil {
		d.PersistOffer(o)
		d.NotifyOffer(o)
	}
	if p := d.World.Player(sess.CharID); p != nil {
		d.sendInventory(sess, p)
	}
}

func (d *Deps) PersistOffer(o *exchange.Offer) {
	ctx, cancel := repoCtx()
	defer cancel()
	if err := d.OfferRepo.Upsert(ctx, o); err != nil {
		d.Log.Error("persist offer failed", zap.String("offer", o.ID), zap.Error(err))
	}
}

func (d *Deps) NotifyOffer(o *exchange.Offer) {
	d.SendToChar(o.OwnerID, protocol.GE_OFFER_UPDATE, protocol.GEOfferUpdate{
		OfferID:        o.ID,
		Status:         o.Status,
		QuantityFilled: o.QuantityFilled,
	})
}
