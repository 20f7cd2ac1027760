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

	"code.superchief.io/superchief/core/events"
	"code.superchief.io/superchief/core/metrics"
	"code.superchief.io/superchief/core/types"
	"code.superchief.io/superchief/libs/num"
	"code.superchief.io/superchief/logging"

	"github.com/ethereum/go-ethereum/common"
)

// CancelOrder permanently invalidates one of the caller's own orders at
// the caller's current nonce. Cancelling an already consumed order is
// not an error, the order just stays consumed.
func (e *Engine) CancelOrder(ctx context.Context, caller common.Address, o *types.Order) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cancelOrder(ctx, caller, o)
}

// CancelOrders invalidates a batch of the caller's own orders. The batch
// stops at the first order not owned by the caller, already marked
// hashes stay marked.
func (e *Engine) CancelOrders(ctx context.Context, caller common.Address, orders []*types.Order) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, o := range orders {
		if err := e.cancelOrder(ctx, caller, o); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) cancelOrder(ctx context.Context, caller common.Address, o *types.Order) error {
	if o.Trader != caller {
		return ErrNotTrader
	}
	hash, err := e.signer.LeafHash(o, e.nonce(o.Trader))
	if err != nil {
		return err
	}
	e.cancelledOrFilled[hash] = struct{}{}
	e.log.Debug("order cancelled",
		logging.String("trader", o.Trader.Hex()),
		logging.String("hash", hash.Hex()),
	)
	e.broker.Send(events.NewOrderCancelledEvent(ctx, o.Trader, hash))
	return nil
}

// IncrementNonce invalidates every order the caller signed at the
// current nonce, all at once.
func (e *Engine) IncrementNonce(ctx context.Context, caller common.Address) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := num.UintZero().Add(e.nonce(caller), num.UintOne())
	e.nonces[caller] = next
	metrics.NonceCounterInc()
	e.broker.Send(events.NewNonceIncrementedEvent(ctx, caller, next))
}

// Nonce returns the trader's current trading nonce.
func (e *Engine) Nonce(trader common.Address) *num.Uint {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nonce(trader)
}

// IsCancelledOrFilled returns whether the order hash was consumed.
func (e *Engine) IsCancelledOrFilled(hash common.Hash) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.cancelledOrFilled[hash]
	return ok
}

// Open lifts the administrative halt.
func (e *Engine) Open(caller common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.owner {
		return ErrNotOwner
	}
	e.open = true
	e.log.Info("settlement opened")
	return nil
}

// Close halts all new settlements, cancellation keeps working.
func (e *Engine) Close(caller common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.owner {
		return ErrNotOwner
	}
	e.open = false
	e.log.Info("settlement closed")
	return nil
}

// SetOracle updates the oracle key on the signature verifier.
func (e *Engine) SetOracle(caller, oracle common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.owner {
		return ErrNotOwner
	}
	return e.signer.SetOracle(oracle)
}

// SetBlockRange updates the oracle attestation freshness window.
func (e *Engine) SetBlockRange(caller common.Address, blockRange uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.owner {
		return ErrNotOwner
	}
	e.signer.SetBlockRange(blockRange)
	return nil
}

// SetDelegate swaps the transfer authority the engine settles through.
func (e *Engine) SetDelegate(caller common.Address, delegate Delegate) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.owner {
		return ErrNotOwner
	}
	if delegate == nil {
		return ErrNilDependency
	}
	e.delegate = delegate
	return nil
}

// SetPolicyManager swaps the matching policy whitelist.
func (e *Engine) SetPolicyManager(caller common.Address, policies PolicyManager) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.owner {
		return ErrNotOwner
	}
	if policies == nil {
		return ErrNilDependency
	}
	e.policies = policies
	return nil
}
