// Copyright (C) 2023 SuperChief Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package auction

import (
	"context"
	"encoding/binary"
	"sync"
	"time"

	"code.superchief.io/superchief/core/events"
	"code.superchief.io/superchief/core/metrics"
	"code.superchief.io/superchief/core/types"
	"code.superchief.io/superchief/libs/crypto"
	"code.superchief.io/superchief/libs/num"
	"code.superchief.io/superchief/logging"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

var (
	ErrUnknownAuction    = errors.New("unknown auction")
	ErrAuctionExists     = errors.New("auction already exists")
	ErrAuctionNotActive  = errors.New("auction already finished")
	ErrAuctionEnded      = errors.New("auction ended")
	ErrBidBelowMinimum   = errors.New("bid price is low than minimum price")
	ErrBidBelowLast      = errors.New("bid price is low than last one")
	ErrAuctionNotOver    = errors.New("auction not finished")
	ErrNoFinishPermit    = errors.New("don't have permission to finish")
	ErrNotAuctionOwner   = errors.New("caller is not the auction owner")
	ErrAuctionHasBid     = errors.New("auction already has a bid")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrInvalidRequest    = errors.New("invalid auction request")
	ErrFeesExceedPrice   = errors.New("total fees exceed price")
	ErrZeroAddress       = errors.New("address cannot be zero")
	ErrNilRequestField   = errors.New("auction request field cannot be nil")
	ErrInvalidWinPercent = errors.New("minimum win percent cannot be under 100")
)

// Delegate is the transfer authority escrow and payout run through, and
// the holder of the protocol base fee registry.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/mocks.go -package mocks code.superchief.io/superchief/core/auction Delegate,TimeService,Broker
type Delegate interface {
	ExecuteBatch(contract common.Address, transfers []*types.Transfer) error
	BaseFees() []types.BaseFee
}

// TimeService gives the engine the current ledger time and height.
type TimeService interface {
	GetTimeNow() time.Time
	GetHeight() uint64
}

// Broker - the event bus broker, send events here.
type Broker interface {
	Send(event events.Event)
	SendBatch(events []events.Event)
}

// Engine runs single item ascending bid auctions: signed creation with
// immediate asset escrow, monotonically increasing bids with atomic
// refund of the outbid party, and a terminal finish or cancel.
type Engine struct {
	Config
	log *logging.Logger
	mu  sync.Mutex

	// self is the auction house account, the engine's identity on the
	// delegate allow-list and the holder of all escrow.
	self common.Address

	// feeSigner is the key every creation request must be signed by,
	// nobody else can put a fee schedule on an auction.
	feeSigner common.Address

	delegate    Delegate
	timeService TimeService
	broker      Broker

	auctions map[common.Hash]*types.Auction
}

// New instantiates the auction engine.
func New(log *logging.Logger, cfg Config, self, feeSigner common.Address, delegate Delegate, timeService TimeService, broker Broker) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	return &Engine{
		Config:      cfg,
		log:         log,
		self:        self,
		feeSigner:   feeSigner,
		delegate:    delegate,
		timeService: timeService,
		broker:      broker,
		auctions:    map[common.Hash]*types.Auction{},
	}
}

// ReloadConf update the internal configuration of the engine.
func (e *Engine) ReloadConf(cfg Config) {
	e.log.Info("reloading configuration")
	if e.log.GetLevel() != cfg.Level.Get() {
		e.log.Info("updating log level",
			logging.String("old", e.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		e.log.SetLevel(cfg.Level.Get())
	}

	e.Config = cfg
}

// RequestDigest is the message hash the fee signer personal-signs to
// authorize an auction creation, covering the creator and every request
// field including the fee schedule.
func RequestDigest(creator common.Address, req *types.AuctionRequest) common.Hash {
	var scalars [8 + 8]byte
	binary.BigEndian.PutUint64(scalars[:8], req.MinWinPercent)
	binary.BigEndian.PutUint64(scalars[8:], req.Duration)

	tokenID := req.TokenID.Bytes()
	amount := req.Amount.Bytes()
	minPrice := req.MinPrice.Bytes()

	parts := [][]byte{
		creator.Bytes(),
		{byte(req.AssetType)},
		req.Collection.Bytes(),
		tokenID[:],
		amount[:],
		req.PaymentToken.Bytes(),
		minPrice[:],
		scalars[:],
	}
	for _, f := range req.Fees {
		var rate [2]byte
		binary.BigEndian.PutUint16(rate[:], f.Rate)
		parts = append(parts, rate[:], f.Recipient.Bytes())
	}
	return common.BytesToHash(crypto.Keccak256(parts...))
}

// CreateAuction opens an auction for the caller's asset. The request has
// to be signed by the fee signer, then the asset is escrowed with the
// auction house atomically with the auction becoming visible.
func (e *Engine) CreateAuction(ctx context.Context, caller common.Address, req *types.AuctionRequest, sig types.Signature) (common.Hash, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := validateRequest(req); err != nil {
		return common.Hash{}, err
	}

	digest := RequestDigest(caller, req)
	signer, err := recoverPersonalSigner(digest, sig)
	if err != nil || signer != e.feeSigner {
		return common.Hash{}, ErrInvalidSignature
	}

	id := e.auctionID(caller, req)
	if _, ok := e.auctions[id]; ok {
		return common.Hash{}, ErrAuctionExists
	}

	quantity := escrowQuantity(req.AssetType, req.Amount)
	err = e.delegate.ExecuteBatch(e.self, []*types.Transfer{
		types.NewAssetTransfer(caller, e.self, req.Collection, req.TokenID, quantity),
	})
	if err != nil {
		return common.Hash{}, err
	}

	e.auctions[id] = &types.Auction{
		ID:            id,
		AssetType:     req.AssetType,
		Collection:    req.Collection,
		TokenID:       req.TokenID.Clone(),
		Amount:        quantity,
		PaymentToken:  req.PaymentToken,
		MinPrice:      req.MinPrice.Clone(),
		MinWinPercent: req.MinWinPercent,
		StartTime:     uint64(e.timeService.GetTimeNow().Unix()),
		Duration:      req.Duration,
		Owner:         caller,
		BidPrice:      num.UintZero(),
		Fees:          append([]types.Fee(nil), req.Fees...),
		State:         types.AuctionStateActive,
	}

	e.log.Info("auction started",
		logging.String("id", id.Hex()),
		logging.String("owner", caller.Hex()),
		logging.String("min-price", req.MinPrice.String()),
	)
	e.broker.Send(events.NewAuctionCreatedEvent(ctx, id, caller, req.MinPrice))
	return id, nil
}

// Bid places a new highest bid. The previous bidder is refunded in the
// same atomic batch the new bid is escrowed in, an outbid party can
// never be left short.
func (e *Engine) Bid(ctx context.Context, caller common.Address, id common.Hash, price *num.Uint) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.auctions[id]
	if !ok {
		return ErrUnknownAuction
	}
	if a.State != types.AuctionStateActive {
		return ErrAuctionNotActive
	}
	now := uint64(e.timeService.GetTimeNow().Unix())
	if now >= a.EndTime() {
		return ErrAuctionEnded
	}
	if price.LT(a.MinPrice) {
		return ErrBidBelowMinimum
	}
	if a.HasBid() {
		// price*100 >= bidPrice*minWinPercent, the configured margin over
		// the standing bid
		lhs := num.UintZero().Mul(price, num.NewUint(100))
		rhs := num.UintZero().Mul(a.BidPrice, num.NewUint(a.MinWinPercent))
		if lhs.LT(rhs) {
			return ErrBidBelowLast
		}
	}

	transfers := make([]*types.Transfer, 0, 2)
	if a.HasBid() {
		transfers = append(transfers, types.NewValueTransfer(e.self, a.LastBidder, a.PaymentToken, a.BidPrice))
	}
	transfers = append(transfers, types.NewValueTransfer(caller, e.self, a.PaymentToken, price))
	if err := e.delegate.ExecuteBatch(e.self, transfers); err != nil {
		return err
	}

	a.BidPrice = price.Clone()
	a.LastBidder = caller

	if e.log.IsDebug() {
		e.log.Debug("new bid",
			logging.String("id", id.Hex()),
			logging.String("bidder", caller.Hex()),
			logging.String("price", price.String()),
		)
	}
	metrics.AuctionBidCounterInc()
	e.broker.Send(events.NewAuctionBidEvent(ctx, id, caller, price))
	return nil
}

// Finish settles an ended auction. A bid auction can only be finished by
// its last bidder and pays out through the same fee split as order
// settlement, an unbid auction can only be finished by its owner and
// returns the asset.
func (e *Engine) Finish(ctx context.Context, caller common.Address, id common.Hash) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.auctions[id]
	if !ok {
		return ErrUnknownAuction
	}
	if a.State != types.AuctionStateActive {
		return ErrAuctionNotActive
	}
	now := uint64(e.timeService.GetTimeNow().Unix())
	if now < a.EndTime() {
		return ErrAuctionNotOver
	}

	if !a.HasBid() {
		if caller != a.Owner {
			return ErrNoFinishPermit
		}
		err := e.delegate.ExecuteBatch(e.self, []*types.Transfer{
			types.NewAssetTransfer(e.self, a.Owner, a.Collection, a.TokenID, a.Amount),
		})
		if err != nil {
			return err
		}
		a.State = types.AuctionStateFinished
		e.broker.Send(events.NewAuctionFinishedEvent(ctx, id, a.Owner, num.UintZero()))
		return nil
	}

	if caller != a.LastBidder {
		return ErrNoFinishPermit
	}

	transfers, err := e.payoutTransfers(a)
	if err != nil {
		return err
	}
	if err := e.delegate.ExecuteBatch(e.self, transfers); err != nil {
		return err
	}

	a.State = types.AuctionStateFinished
	e.log.Info("auction finished",
		logging.String("id", id.Hex()),
		logging.String("winner", a.LastBidder.Hex()),
		logging.String("price", a.BidPrice.String()),
	)
	e.broker.Send(events.NewAuctionFinishedEvent(ctx, id, a.LastBidder, a.BidPrice))
	return nil
}

// Cancel closes an auction nobody ever bid on and returns the escrowed
// asset to the owner.
func (e *Engine) Cancel(ctx context.Context, caller common.Address, id common.Hash) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.auctions[id]
	if !ok {
		return ErrUnknownAuction
	}
	if a.State != types.AuctionStateActive {
		return ErrAuctionNotActive
	}
	if caller != a.Owner {
		return ErrNotAuctionOwner
	}
	if a.HasBid() {
		return ErrAuctionHasBid
	}

	err := e.delegate.ExecuteBatch(e.self, []*types.Transfer{
		types.NewAssetTransfer(e.self, a.Owner, a.Collection, a.TokenID, a.Amount),
	})
	if err != nil {
		return err
	}
	a.State = types.AuctionStateCancelled
	e.broker.Send(events.NewAuctionCancelledEvent(ctx, id, a.Owner))
	return nil
}

// Auction returns a copy of the auction state under the id.
func (e *Engine) Auction(id common.Hash) (*types.Auction, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.auctions[id]
	if !ok {
		return nil, false
	}
	cpy := *a
	cpy.TokenID = a.TokenID.Clone()
	cpy.Amount = a.Amount.Clone()
	cpy.MinPrice = a.MinPrice.Clone()
	cpy.BidPrice = a.BidPrice.Clone()
	cpy.Fees = append([]types.Fee(nil), a.Fees...)
	return &cpy, true
}

// payoutTransfers splits the winning bid across the auction's fee
// schedule plus the protocol base fees, remainder to the owner, and
// moves the asset to the winner. Everything leaves the escrow account.
func (e *Engine) payoutTransfers(a *types.Auction) ([]*types.Transfer, error) {
	fees := append([]types.Fee(nil), a.Fees...)
	for _, f := range e.delegate.BaseFees() {
		fees = append(fees, types.Fee{Rate: f.Rate, Recipient: f.Recipient})
	}

	var totalRate uint32
	for _, f := range fees {
		totalRate += uint32(f.Rate)
	}
	if totalRate > uint32(types.InverseBasisPoint) {
		return nil, ErrFeesExceedPrice
	}

	transfers := make([]*types.Transfer, 0, len(fees)+2)
	remainder := a.BidPrice.Clone()
	for _, f := range fees {
		fee := num.UintZero().Mul(a.BidPrice, num.NewUint(uint64(f.Rate)))
		fee.Div(fee, num.NewUint(uint64(types.InverseBasisPoint)))
		remainder.Sub(remainder, fee)
		transfers = append(transfers, types.NewValueTransfer(e.self, f.Recipient, a.PaymentToken, fee))
	}
	transfers = append(transfers,
		types.NewValueTransfer(e.self, a.Owner, a.PaymentToken, remainder),
		types.NewAssetTransfer(e.self, a.LastBidder, a.Collection, a.TokenID, a.Amount),
	)
	return transfers, nil
}

// auctionID derives the auction identity from its owner, item, price
// floor and the current ledger height.
func (e *Engine) auctionID(owner common.Address, req *types.AuctionRequest) common.Hash {
	tokenID := req.TokenID.Bytes()
	minPrice := req.MinPrice.Bytes()
	var height [32]byte
	binary.BigEndian.PutUint64(height[24:], e.timeService.GetHeight())

	return common.BytesToHash(crypto.Keccak256(
		owner.Bytes(),
		req.Collection.Bytes(),
		tokenID[:],
		req.PaymentToken.Bytes(),
		minPrice[:],
		height[:],
	))
}

func validateRequest(req *types.AuctionRequest) error {
	if req == nil || req.TokenID == nil || req.Amount == nil || req.MinPrice == nil {
		return ErrNilRequestField
	}
	if req.Collection == (common.Address{}) {
		return ErrZeroAddress
	}
	if req.MinWinPercent < 100 {
		return ErrInvalidWinPercent
	}
	if req.Duration == 0 {
		return ErrInvalidRequest
	}
	if req.AssetType == types.AssetTypeFungible && req.Amount.IsZero() {
		return ErrInvalidRequest
	}
	return nil
}

func escrowQuantity(at types.AssetType, amount *num.Uint) *num.Uint {
	if at == types.AssetTypeUnit {
		return num.UintOne()
	}
	return amount.Clone()
}

// recoverPersonalSigner recovers the key behind an EIP-191 personal-sign
// signature over a 32 byte message hash.
func recoverPersonalSigner(msg common.Hash, sig types.Signature) (common.Address, error) {
	if sig.V != 27 && sig.V != 28 {
		return common.Address{}, ErrInvalidSignature
	}
	raw := make([]byte, 65)
	copy(raw[:32], sig.R[:])
	copy(raw[32:64], sig.S[:])
	raw[64] = sig.V - 27

	pub, err := ethcrypto.SigToPub(accounts.TextHash(msg[:]), raw)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "recovering signer")
	}
	return ethcrypto.PubkeyToAddress(*pub), nil
}
