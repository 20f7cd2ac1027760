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

package types

import (
	"code.superchief.io/superchief/libs/num"

	"github.com/ethereum/go-ethereum/common"
)

// AssetType of the item under auction or order.
type AssetType uint8

const (
	// AssetTypeUnit - unique items, quantity is always one.
	AssetTypeUnit AssetType = 0
	// AssetTypeFungible - multi-edition items with a quantity.
	AssetTypeFungible AssetType = 1
)

// AuctionState - an auction is created active and reaches exactly one of
// the two terminal states.
type AuctionState uint8

const (
	AuctionStateActive AuctionState = iota
	AuctionStateFinished
	AuctionStateCancelled
)

func (s AuctionState) String() string {
	switch s {
	case AuctionStateActive:
		return "active"
	case AuctionStateFinished:
		return "finished"
	default:
		return "cancelled"
	}
}

// AuctionRequest is the creation request for a single item, time boxed
// ascending bid sale. The whole request is covered by the creation
// signature so the fee schedule cannot be injected by a third party.
type AuctionRequest struct {
	AssetType     AssetType
	Collection    common.Address
	TokenID       *num.Uint
	Amount        *num.Uint
	PaymentToken  common.Address
	MinPrice      *num.Uint
	MinWinPercent uint64
	Duration      uint64
	Fees          []Fee
}

// Auction is the live state of a sale.
type Auction struct {
	ID            common.Hash
	AssetType     AssetType
	Collection    common.Address
	TokenID       *num.Uint
	Amount        *num.Uint
	PaymentToken  common.Address
	MinPrice      *num.Uint
	MinWinPercent uint64
	StartTime     uint64
	Duration      uint64
	Owner         common.Address
	BidPrice      *num.Uint
	LastBidder    common.Address
	Fees          []Fee
	State         AuctionState
}

// HasBid returns whether any bid was ever accepted.
func (a *Auction) HasBid() bool {
	return a.LastBidder != (common.Address{})
}

// EndTime is the first time at which the auction can be finished.
func (a *Auction) EndTime() uint64 {
	return a.StartTime + a.Duration
}
