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

package events

import (
	"context"

	"code.superchief.io/superchief/libs/num"

	"github.com/ethereum/go-ethereum/common"
)

// TradeSettled is emitted once for every successful order pair execution.
type TradeSettled struct {
	*Base
	seller     common.Address
	buyer      common.Address
	sellHash   common.Hash
	buyHash    common.Hash
	collection common.Address
	tokenID    *num.Uint
	price      *num.Uint
}

func NewTradeSettledEvent(ctx context.Context, seller, buyer common.Address, sellHash, buyHash common.Hash, collection common.Address, tokenID, price *num.Uint) *TradeSettled {
	return &TradeSettled{
		Base:       newBase(ctx, TradeSettledEvent),
		seller:     seller,
		buyer:      buyer,
		sellHash:   sellHash,
		buyHash:    buyHash,
		collection: collection,
		tokenID:    tokenID.Clone(),
		price:      price.Clone(),
	}
}

func (t TradeSettled) Seller() common.Address     { return t.seller }
func (t TradeSettled) Buyer() common.Address      { return t.buyer }
func (t TradeSettled) SellHash() common.Hash      { return t.sellHash }
func (t TradeSettled) BuyHash() common.Hash       { return t.buyHash }
func (t TradeSettled) Collection() common.Address { return t.collection }
func (t TradeSettled) TokenID() *num.Uint         { return t.tokenID.Clone() }
func (t TradeSettled) Price() *num.Uint           { return t.price.Clone() }

// OrderCancelled is emitted when a trader invalidates one of their orders.
type OrderCancelled struct {
	*Base
	trader    common.Address
	orderHash common.Hash
}

func NewOrderCancelledEvent(ctx context.Context, trader common.Address, orderHash common.Hash) *OrderCancelled {
	return &OrderCancelled{
		Base:      newBase(ctx, OrderCancelledEvent),
		trader:    trader,
		orderHash: orderHash,
	}
}

func (o OrderCancelled) Trader() common.Address { return o.trader }
func (o OrderCancelled) OrderHash() common.Hash { return o.orderHash }

// NonceIncremented is emitted on mass cancellation via nonce bump.
type NonceIncremented struct {
	*Base
	trader common.Address
	nonce  *num.Uint
}

func NewNonceIncrementedEvent(ctx context.Context, trader common.Address, nonce *num.Uint) *NonceIncremented {
	return &NonceIncremented{
		Base:   newBase(ctx, NonceIncrementedEvent),
		trader: trader,
		nonce:  nonce.Clone(),
	}
}

func (n NonceIncremented) Trader() common.Address { return n.trader }
func (n NonceIncremented) Nonce() *num.Uint       { return n.nonce.Clone() }
