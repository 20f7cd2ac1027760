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

package execution

import (
	"context"
	"sync"
	"time"

	"code.superchief.io/superchief/core/events"
	"code.superchief.io/superchief/core/metrics"
	"code.superchief.io/superchief/core/policy"
	"code.superchief.io/superchief/core/types"
	"code.superchief.io/superchief/libs/num"
	"code.superchief.io/superchief/logging"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

var (
	ErrClosed                  = errors.New("currently closed")
	ErrSellInvalidParameters   = errors.New("sell has invalid parameters")
	ErrBuyInvalidParameters    = errors.New("buy has invalid parameters")
	ErrSellFailedAuthorization = errors.New("sell failed authorization")
	ErrBuyFailedAuthorization  = errors.New("buy failed authorization")
	ErrPolicyNotWhitelisted    = errors.New("policy is not whitelisted")
	ErrOrdersCannotMatch       = errors.New("orders cannot be matched")
	ErrInvalidPaymentToken     = errors.New("invalid payment token")
	ErrFeesExceedPrice         = errors.New("total fees exceed price")
	ErrIncorrectAttachedValue  = errors.New("incorrect attached value")
	ErrNotTrader               = errors.New("caller is not the trader")
	ErrNotOwner                = errors.New("caller is not the owner")
	ErrNilDependency           = errors.New("dependency cannot be nil")
)

// Signer is the signature verifier the engine consults for every order.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/mocks.go -package mocks code.superchief.io/superchief/core/execution Signer,Delegate,PolicyManager,TimeService,Broker
type Signer interface {
	LeafHash(o *types.Order, nonce *num.Uint) (common.Hash, error)
	ValidateSignatures(caller common.Address, env *types.OrderEnvelope, leafHash common.Hash, nonce *num.Uint, currentBlock uint64) bool
	SetOracle(oracle common.Address) error
	SetBlockRange(blockRange uint64)
}

// Delegate is the transfer authority every settlement moves balances
// through, and the holder of the protocol base fee registry.
type Delegate interface {
	ExecuteBatch(contract common.Address, transfers []*types.Transfer) error
	BaseFees() []types.BaseFee
}

// PolicyManager is the whitelist of matching policies.
type PolicyManager interface {
	IsWhitelisted(id common.Address) bool
	Policy(id common.Address) (policy.Policy, bool)
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

// Engine matches two signed orders and settles them: parameter checks,
// authorization, policy match, fee split, atomic transfer batch, order
// consumption. Any failure leaves no state behind.
type Engine struct {
	Config
	log *logging.Logger
	mu  sync.Mutex

	// self is the engine's identity on the delegate allow-list, every
	// transfer batch is executed under it.
	self  common.Address
	owner common.Address

	// wrappedToken is the only non native payment token accepted.
	wrappedToken common.Address

	signer      Signer
	delegate    Delegate
	policies    PolicyManager
	timeService TimeService
	broker      Broker

	nonces            map[common.Address]*num.Uint
	cancelledOrFilled map[common.Hash]struct{}
	open              bool
}

// New instantiates the settlement engine, open for business.
func New(
	log *logging.Logger,
	cfg Config,
	owner, self, wrappedToken common.Address,
	signer Signer,
	delegate Delegate,
	policies PolicyManager,
	timeService TimeService,
	broker Broker,
) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	return &Engine{
		Config:            cfg,
		log:               log,
		owner:             owner,
		self:              self,
		wrappedToken:      wrappedToken,
		signer:            signer,
		delegate:          delegate,
		policies:          policies,
		timeService:       timeService,
		broker:            broker,
		nonces:            map[common.Address]*num.Uint{},
		cancelledOrFilled: map[common.Hash]struct{}{},
		open:              true,
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

// Execute settles a matched pair of orders. The sell envelope and buy
// envelope each carry their own authorization material, attached is the
// native value the caller put up alongside the call and must exactly
// cover the price for native payment, be zero otherwise.
func (e *Engine) Execute(ctx context.Context, caller common.Address, sellEnv, buyEnv *types.OrderEnvelope, attached *num.Uint) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.open {
		metrics.RejectionCounterInc(namedLogger, "closed")
		return ErrClosed
	}

	sell, buy := sellEnv.Order, buyEnv.Order
	sellNonce, buyNonce := e.nonce(sell.Trader), e.nonce(buy.Trader)

	sellHash, err := e.signer.LeafHash(sell, sellNonce)
	if err != nil {
		return errors.Wrap(ErrSellInvalidParameters, err.Error())
	}
	buyHash, err := e.signer.LeafHash(buy, buyNonce)
	if err != nil {
		return errors.Wrap(ErrBuyInvalidParameters, err.Error())
	}

	now := uint64(e.timeService.GetTimeNow().Unix())
	if !e.validOrderParameters(sell, sellHash, now) {
		metrics.RejectionCounterInc(namedLogger, "invalid-parameters")
		return ErrSellInvalidParameters
	}
	if !e.validOrderParameters(buy, buyHash, now) {
		metrics.RejectionCounterInc(namedLogger, "invalid-parameters")
		return ErrBuyInvalidParameters
	}

	height := e.timeService.GetHeight()
	if !e.signer.ValidateSignatures(caller, sellEnv, sellHash, sellNonce, height) {
		metrics.RejectionCounterInc(namedLogger, "authorization")
		return ErrSellFailedAuthorization
	}
	if !e.signer.ValidateSignatures(caller, buyEnv, buyHash, buyNonce, height) {
		metrics.RejectionCounterInc(namedLogger, "authorization")
		return ErrBuyFailedAuthorization
	}

	price, tokenID, amount, err := e.matchOrders(sell, buy)
	if err != nil {
		metrics.RejectionCounterInc(namedLogger, "matching")
		return err
	}

	if err := e.checkAttached(sell.PaymentToken, price, attached); err != nil {
		metrics.RejectionCounterInc(namedLogger, "attached-value")
		return err
	}

	transfers, err := e.settlementTransfers(sell, buy.Trader, price, tokenID, amount)
	if err != nil {
		metrics.RejectionCounterInc(namedLogger, "fees")
		return err
	}
	if err := e.delegate.ExecuteBatch(e.self, transfers); err != nil {
		metrics.RejectionCounterInc(namedLogger, "transfer")
		return err
	}

	e.cancelledOrFilled[sellHash] = struct{}{}
	e.cancelledOrFilled[buyHash] = struct{}{}

	if e.log.IsDebug() {
		e.log.Debug("orders settled",
			logging.String("seller", sell.Trader.Hex()),
			logging.String("buyer", buy.Trader.Hex()),
			logging.String("price", price.String()),
			logging.String("fee-fraction", types.FeeFraction(sell.TotalFeeRate()).String()),
			logging.String("sell-hash", sellHash.Hex()),
			logging.String("buy-hash", buyHash.Hex()),
		)
	}
	metrics.SettlementCounterInc(sell.PaymentToken.Hex())
	e.broker.Send(events.NewTradeSettledEvent(
		ctx, sell.Trader, buy.Trader, sellHash, buyHash, sell.Collection, tokenID, price))
	return nil
}

// validOrderParameters holds the structural and temporal order checks,
// plus consumption.
func (e *Engine) validOrderParameters(o *types.Order, leaf common.Hash, now uint64) bool {
	if o.Trader == (common.Address{}) {
		return false
	}
	if o.ListingTime > now {
		return false
	}
	if o.ExpirationTime != 0 && o.ExpirationTime <= now {
		return false
	}
	_, consumed := e.cancelledOrFilled[leaf]
	return !consumed
}

// matchOrders resolves the pair through the whitelisted matching policy,
// the earlier listed order is maker.
func (e *Engine) matchOrders(sell, buy *types.Order) (*num.Uint, *num.Uint, *num.Uint, error) {
	if !e.policies.IsWhitelisted(sell.MatchingPolicy) {
		return nil, nil, nil, ErrPolicyNotWhitelisted
	}
	p, ok := e.policies.Policy(sell.MatchingPolicy)
	if !ok {
		return nil, nil, nil, ErrPolicyNotWhitelisted
	}

	var price, tokenID, amount *num.Uint
	if sell.ListingTime <= buy.ListingTime {
		price, tokenID, amount, ok = p.CanMatchMakerAsk(sell, buy)
	} else {
		price, tokenID, amount, ok = p.CanMatchMakerBid(sell, buy)
	}
	if !ok {
		return nil, nil, nil, ErrOrdersCannotMatch
	}
	return price, tokenID, amount, nil
}

// checkAttached enforces the payment token whitelist and the exact
// attached value rule for native payment.
func (e *Engine) checkAttached(paymentToken common.Address, price, attached *num.Uint) error {
	if paymentToken != types.NativeToken && paymentToken != e.wrappedToken {
		return ErrInvalidPaymentToken
	}
	if attached == nil {
		attached = num.UintZero()
	}
	if paymentToken == types.NativeToken {
		if attached.NEQ(price) {
			return ErrIncorrectAttachedValue
		}
		return nil
	}
	if !attached.IsZero() {
		return ErrIncorrectAttachedValue
	}
	return nil
}

// settlementTransfers builds the full transfer batch of one settlement:
// each fee entry gets price*rate/10000 rounded down, the seller gets the
// remainder, the asset moves from seller to buyer.
func (e *Engine) settlementTransfers(sell *types.Order, buyer common.Address, price, tokenID, amount *num.Uint) ([]*types.Transfer, error) {
	baseFees := e.delegate.BaseFees()

	totalRate := sell.TotalFeeRate()
	for _, f := range baseFees {
		totalRate += uint32(f.Rate)
	}
	if totalRate > uint32(types.InverseBasisPoint) {
		return nil, ErrFeesExceedPrice
	}

	transfers := make([]*types.Transfer, 0, len(sell.Fees)+len(baseFees)+2)
	remainder := price.Clone()
	for _, f := range sell.Fees {
		fee := feeAmount(price, f.Rate)
		remainder.Sub(remainder, fee)
		transfers = append(transfers, types.NewValueTransfer(buyer, f.Recipient, sell.PaymentToken, fee))
	}
	for _, f := range baseFees {
		fee := feeAmount(price, f.Rate)
		remainder.Sub(remainder, fee)
		transfers = append(transfers, types.NewValueTransfer(buyer, f.Recipient, sell.PaymentToken, fee))
	}
	transfers = append(transfers,
		types.NewValueTransfer(buyer, sell.Trader, sell.PaymentToken, remainder),
		types.NewAssetTransfer(sell.Trader, buyer, sell.Collection, tokenID, amount),
	)
	return transfers, nil
}

func feeAmount(price *num.Uint, rate uint16) *num.Uint {
	fee := num.UintZero().Mul(price, num.NewUint(uint64(rate)))
	return fee.Div(fee, num.NewUint(uint64(types.InverseBasisPoint)))
}

func (e *Engine) nonce(trader common.Address) *num.Uint {
	if n, ok := e.nonces[trader]; ok {
		return n.Clone()
	}
	return num.UintZero()
}
