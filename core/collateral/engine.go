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

package collateral

import (
	"sync"

	"code.superchief.io/superchief/core/types"
	"code.superchief.io/superchief/libs/num"
	"code.superchief.io/superchief/logging"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

var (
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInsufficientHolding = errors.New("insufficient asset holding")
	ErrNilTransfer         = errors.New("nil transfer")
)

type valueKey struct {
	token common.Address
	party common.Address
}

type assetKey struct {
	collection common.Address
	tokenID    string
	party      common.Address
}

// Engine is the asset and value ledger every settlement ultimately moves
// balances on. A batch of transfers commits in full or not at all.
type Engine struct {
	Config
	log *logging.Logger
	mu  sync.Mutex

	balances map[valueKey]*num.Uint
	holdings map[assetKey]*num.Uint
}

// New instantiates a new collateral engine.
func New(log *logging.Logger, cfg Config) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	return &Engine{
		Config:   cfg,
		log:      log,
		balances: map[valueKey]*num.Uint{},
		holdings: map[assetKey]*num.Uint{},
	}
}

// ReloadConf updates the internal configuration of the collateral engine.
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

// Deposit credits a party's value account for the given payment token.
func (e *Engine) Deposit(party, token common.Address, amount *num.Uint) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.creditValue(party, token, amount)
}

// MintAsset credits a party's holding of an asset.
func (e *Engine) MintAsset(party, collection common.Address, tokenID, amount *num.Uint) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.creditAsset(party, collection, tokenID, amount)
}

// BalanceOf returns the party's balance in the given payment token.
func (e *Engine) BalanceOf(party, token common.Address) *num.Uint {
	e.mu.Lock()
	defer e.mu.Unlock()
	if b, ok := e.balances[valueKey{token, party}]; ok {
		return b.Clone()
	}
	return num.UintZero()
}

// HoldingOf returns the party's holding of the given asset.
func (e *Engine) HoldingOf(party, collection common.Address, tokenID *num.Uint) *num.Uint {
	e.mu.Lock()
	defer e.mu.Unlock()
	if h, ok := e.holdings[assetKey{collection, tokenID.String(), party}]; ok {
		return h.Clone()
	}
	return num.UintZero()
}

// OwnerOf returns the holder of a unit asset, or the zero address when
// nobody holds it.
func (e *Engine) OwnerOf(collection common.Address, tokenID *num.Uint) common.Address {
	e.mu.Lock()
	defer e.mu.Unlock()
	for k, v := range e.holdings {
		if k.collection == collection && k.tokenID == tokenID.String() && !v.IsZero() {
			return k.party
		}
	}
	return common.Address{}
}

// TransferBatch applies all the given transfers, or none of them. Applied
// transfers are journaled and rolled back on the first failure, so a
// batch can safely chain movements through intermediate accounts.
func (e *Engine) TransferBatch(transfers []*types.Transfer) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	applied := make([]*types.Transfer, 0, len(transfers))
	for _, t := range transfers {
		if err := e.apply(t); err != nil {
			for i := len(applied) - 1; i >= 0; i-- {
				e.unapply(applied[i])
			}
			return errors.Wrapf(err, "transfer %s", t)
		}
		applied = append(applied, t)
	}

	if e.log.IsDebug() {
		e.log.Debug("transfer batch committed", logging.Int("transfers", len(transfers)))
	}
	return nil
}

func (e *Engine) apply(t *types.Transfer) error {
	if t == nil {
		return ErrNilTransfer
	}
	switch t.Kind {
	case types.TransferKindValue:
		bal, ok := e.balances[valueKey{t.Token, t.From}]
		if !ok || bal.LT(t.Amount) {
			return ErrInsufficientFunds
		}
		bal.Sub(bal, t.Amount)
		e.creditValue(t.To, t.Token, t.Amount)
	default:
		hold, ok := e.holdings[assetKey{t.Collection, t.TokenID.String(), t.From}]
		if !ok || hold.LT(t.Amount) {
			return ErrInsufficientHolding
		}
		hold.Sub(hold, t.Amount)
		e.creditAsset(t.To, t.Collection, t.TokenID, t.Amount)
	}
	return nil
}

func (e *Engine) unapply(t *types.Transfer) {
	switch t.Kind {
	case types.TransferKindValue:
		e.balances[valueKey{t.Token, t.To}].Sub(e.balances[valueKey{t.Token, t.To}], t.Amount)
		e.creditValue(t.From, t.Token, t.Amount)
	default:
		k := assetKey{t.Collection, t.TokenID.String(), t.To}
		e.holdings[k].Sub(e.holdings[k], t.Amount)
		e.creditAsset(t.From, t.Collection, t.TokenID, t.Amount)
	}
}

func (e *Engine) creditValue(party, token common.Address, amount *num.Uint) {
	k := valueKey{token, party}
	if b, ok := e.balances[k]; ok {
		b.AddSum(amount)
		return
	}
	e.balances[k] = amount.Clone()
}

func (e *Engine) creditAsset(party, collection common.Address, tokenID, amount *num.Uint) {
	k := assetKey{collection, tokenID.String(), party}
	if h, ok := e.holdings[k]; ok {
		h.AddSum(amount)
		return
	}
	e.holdings[k] = amount.Clone()
}
