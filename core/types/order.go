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

// Side of an order, buy or sell. The values match the wire encoding of the
// signed order digest, do not reorder.
type Side uint8

const (
	SideBuy  Side = 0
	SideSell Side = 1
)

func (s Side) String() string {
	if s == SideBuy {
		return "buy"
	}
	return "sell"
}

// SignatureVersion selects how the order signature is to be checked.
type SignatureVersion uint8

const (
	// SignatureVersionSingle - one signature over this one order.
	SignatureVersionSingle SignatureVersion = 0
	// SignatureVersionBulk - the order is a leaf of a merkle tree whose
	// root was signed, the envelope carries the proof path.
	SignatureVersionBulk SignatureVersion = 1
)

// InverseBasisPoint is the denominator of all fee rates.
const InverseBasisPoint uint16 = 10000

// NativeToken is the payment token value denoting the native value token.
var NativeToken = common.Address{}

// Fee is a single order-declared fee entry, rate in basis points.
type Fee struct {
	Rate      uint16
	Recipient common.Address
}

func (f Fee) Clone() Fee {
	return f
}

// BaseFee is a protocol level fee entry, applied at settlement on top of
// the order-declared fees.
type BaseFee struct {
	Label     string
	Rate      uint16
	Recipient common.Address
}

// Order is a trader's signed intent to buy or sell a specific asset
// quantity at a specific price. Its identity is the hash of these fields
// plus the trader's current nonce.
type Order struct {
	Trader         common.Address
	Side           Side
	MatchingPolicy common.Address
	Collection     common.Address
	TokenID        *num.Uint
	Amount         *num.Uint
	PaymentToken   common.Address
	Price          *num.Uint
	ListingTime    uint64
	ExpirationTime uint64
	Fees           []Fee
	Salt           *num.Uint
	ExtraParams    []byte
}

func (o *Order) Clone() *Order {
	cpy := *o
	cpy.TokenID = o.TokenID.Clone()
	cpy.Amount = o.Amount.Clone()
	cpy.Price = o.Price.Clone()
	cpy.Salt = o.Salt.Clone()
	cpy.Fees = make([]Fee, len(o.Fees))
	copy(cpy.Fees, o.Fees)
	cpy.ExtraParams = append([]byte(nil), o.ExtraParams...)
	return &cpy
}

// TotalFeeRate sums the order declared rates into a uint32 so a crafted
// fee list cannot wrap back under the basis point bound.
func (o *Order) TotalFeeRate() uint32 {
	var total uint32
	for _, f := range o.Fees {
		total += uint32(f.Rate)
	}
	return total
}

// FeeFraction expresses a basis point rate as a decimal fraction of the
// price. Reporting only, settlement arithmetic stays on Uint.
func FeeFraction(rate uint32) num.Decimal {
	return num.DecimalFromInt64(int64(rate)).Div(num.DecimalFromInt64(int64(InverseBasisPoint)))
}

// Signature is a detached secp256k1 signature in split form, the shape
// every off-engine attestation travels in.
type Signature struct {
	V uint8
	R [32]byte
	S [32]byte
}

// OracleSignature is the secondary attestation required when an order is
// not submitted by its own trader.
type OracleSignature = Signature

// OrderEnvelope packs an order with its authorization material, the unit
// submitted to the settlement engine.
type OrderEnvelope struct {
	Order *Order
	V     uint8
	R     [32]byte
	S     [32]byte
	// MerklePath is only set for bulk signed orders, the proof path from
	// the order leaf to the signed root.
	MerklePath [][32]byte
	// Oracle is nil when no oracle co-signature was supplied.
	Oracle           *OracleSignature
	SignatureVersion SignatureVersion
	BlockNumber      uint64
}

// HasSignature returns whether any signature material was submitted at
// all. Zeroed r/s are treated as an absent signature.
func (e *OrderEnvelope) HasSignature() bool {
	return e.R != [32]byte{} || e.S != [32]byte{}
}
