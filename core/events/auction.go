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

// Auction is emitted on every auction lifecycle change. The event type
// carries the transition, the payload identifies the auction.
type Auction struct {
	*Base
	auctionID common.Hash
	party     common.Address
	price     *num.Uint
}

func NewAuctionCreatedEvent(ctx context.Context, id common.Hash, owner common.Address, minPrice *num.Uint) *Auction {
	return &Auction{
		Base:      newBase(ctx, AuctionCreatedEvent),
		auctionID: id,
		party:     owner,
		price:     minPrice.Clone(),
	}
}

func NewAuctionBidEvent(ctx context.Context, id common.Hash, bidder common.Address, price *num.Uint) *Auction {
	return &Auction{
		Base:      newBase(ctx, AuctionBidEvent),
		auctionID: id,
		party:     bidder,
		price:     price.Clone(),
	}
}

func NewAuctionFinishedEvent(ctx context.Context, id common.Hash, winner common.Address, price *num.Uint) *Auction {
	return &Auction{
		Base:      newBase(ctx, AuctionFinishedEvent),
		auctionID: id,
		party:     winner,
		price:     price.Clone(),
	}
}

func NewAuctionCancelledEvent(ctx context.Context, id common.Hash, owner common.Address) *Auction {
	return &Auction{
		Base:      newBase(ctx, AuctionCancelledEvent),
		auctionID: id,
		party:     owner,
		price:     num.UintZero(),
	}
}

func (a Auction) AuctionID() common.Hash { return a.auctionID }
func (a Auction) Party() common.Address  { return a.party }
func (a Auction) Price() *num.Uint       { return a.price.Clone() }
