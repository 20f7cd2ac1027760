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

package policy

import (
	"code.superchief.io/superchief/core/types"
	"code.superchief.io/superchief/libs/num"
)

// Policy decides whether a sell and a buy order are compatible and at
// what price, token id and quantity they settle. The maker's price
// governs, the taker only has to be compatible with it.
type Policy interface {
	// CanMatchMakerAsk resolves the match with the sell order as maker.
	CanMatchMakerAsk(sell, buy *types.Order) (price, tokenID, amount *num.Uint, ok bool)
	// CanMatchMakerBid resolves the match with the buy order as maker.
	CanMatchMakerBid(sell, buy *types.Order) (price, tokenID, amount *num.Uint, ok bool)
}

// ordersAgree holds the checks shared by every standard policy: opposite
// sides, same payment token, same collection, same token id, and the
// seller not asking more than the buyer offers.
func ordersAgree(sell, buy *types.Order) bool {
	return sell.Side == types.SideSell &&
		buy.Side == types.SideBuy &&
		sell.MatchingPolicy == buy.MatchingPolicy &&
		sell.PaymentToken == buy.PaymentToken &&
		sell.Collection == buy.Collection &&
		sell.TokenID.EQ(buy.TokenID) &&
		sell.Price.LTE(buy.Price)
}

// StandardUnitPolicy matches orders over unit assets, one indivisible
// token per trade. Order amounts are ignored, the settled quantity is
// always one.
type StandardUnitPolicy struct{}

func (StandardUnitPolicy) CanMatchMakerAsk(sell, buy *types.Order) (*num.Uint, *num.Uint, *num.Uint, bool) {
	if !ordersAgree(sell, buy) {
		return nil, nil, nil, false
	}
	return sell.Price.Clone(), sell.TokenID.Clone(), num.UintOne(), true
}

func (StandardUnitPolicy) CanMatchMakerBid(sell, buy *types.Order) (*num.Uint, *num.Uint, *num.Uint, bool) {
	if !ordersAgree(sell, buy) {
		return nil, nil, nil, false
	}
	return buy.Price.Clone(), buy.TokenID.Clone(), num.UintOne(), true
}

// StandardFungiblePolicy matches orders over fungible assets. Both sides
// must want the exact same non zero quantity.
type StandardFungiblePolicy struct{}

func (StandardFungiblePolicy) CanMatchMakerAsk(sell, buy *types.Order) (*num.Uint, *num.Uint, *num.Uint, bool) {
	if !ordersAgree(sell, buy) || sell.Amount.IsZero() || sell.Amount.NEQ(buy.Amount) {
		return nil, nil, nil, false
	}
	return sell.Price.Clone(), sell.TokenID.Clone(), sell.Amount.Clone(), true
}

func (StandardFungiblePolicy) CanMatchMakerBid(sell, buy *types.Order) (*num.Uint, *num.Uint, *num.Uint, bool) {
	if !ordersAgree(sell, buy) || buy.Amount.IsZero() || sell.Amount.NEQ(buy.Amount) {
		return nil, nil, nil, false
	}
	return buy.Price.Clone(), buy.TokenID.Clone(), buy.Amount.Clone(), true
}
