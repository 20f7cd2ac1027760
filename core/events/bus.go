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
	"sync/atomic"
)

// Type is the type of an event emitted by an engine.
type Type int

const (
	TradeSettledEvent Type = iota
	OrderCancelledEvent
	NonceIncrementedEvent
	AuctionCreatedEvent
	AuctionBidEvent
	AuctionFinishedEvent
	AuctionCancelledEvent
)

var eventStrings = map[Type]string{
	TradeSettledEvent:     "TradeSettledEvent",
	OrderCancelledEvent:   "OrderCancelledEvent",
	NonceIncrementedEvent: "NonceIncrementedEvent",
	AuctionCreatedEvent:   "AuctionCreatedEvent",
	AuctionBidEvent:       "AuctionBidEvent",
	AuctionFinishedEvent:  "AuctionFinishedEvent",
	AuctionCancelledEvent: "AuctionCancelledEvent",
}

func (t Type) String() string {
	s, ok := eventStrings[t]
	if !ok {
		return "UNKNOWN EVENT"
	}
	return s
}

// Event is the interface shared by all engine events.
type Event interface {
	Type() Type
	Context() context.Context
	Sequence() uint64
}

var eventSeq uint64

// Base common denominator of all events.
type Base struct {
	ctx   context.Context
	seq   uint64
	etype Type
}

func newBase(ctx context.Context, t Type) *Base {
	return &Base{
		ctx:   ctx,
		seq:   atomic.AddUint64(&eventSeq, 1),
		etype: t,
	}
}

func (b Base) Type() Type {
	return b.etype
}

func (b Base) Context() context.Context {
	return b.ctx
}

func (b Base) Sequence() uint64 {
	return b.seq
}
