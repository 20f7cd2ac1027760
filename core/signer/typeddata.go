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

package signer

import (
	"math/big"

	"code.superchief.io/superchief/core/types"
	"code.superchief.io/superchief/libs/crypto"
	"code.superchief.io/superchief/libs/num"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/pkg/errors"
)

const (
	// DomainName and DomainVersion pin the EIP-712 domain every digest is
	// bound to. Changing either invalidates all outstanding signatures.
	DomainName    = "SuperChief Marketplace"
	DomainVersion = "1.0"
)

// typedDataTypes is the full EIP-712 type dictionary of the protocol:
// the order struct itself, the oracle wrapper binding an order digest to a
// ledger position, and the bulk root.
var typedDataTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	"Fee": {
		{Name: "rate", Type: "uint16"},
		{Name: "recipient", Type: "address"},
	},
	"Order": {
		{Name: "trader", Type: "address"},
		{Name: "side", Type: "uint8"},
		{Name: "matchingPolicy", Type: "address"},
		{Name: "collection", Type: "address"},
		{Name: "tokenId", Type: "uint256"},
		{Name: "amount", Type: "uint256"},
		{Name: "paymentToken", Type: "address"},
		{Name: "price", Type: "uint256"},
		{Name: "listingTime", Type: "uint256"},
		{Name: "expirationTime", Type: "uint256"},
		{Name: "fees", Type: "Fee[]"},
		{Name: "salt", Type: "uint256"},
		{Name: "extraParams", Type: "bytes"},
		{Name: "nonce", Type: "uint256"},
	},
	"OracleOrder": {
		{Name: "order", Type: "Order"},
		{Name: "blockNumber", Type: "uint256"},
	},
	"Root": {
		{Name: "root", Type: "bytes32"},
	},
}

func uintValue(v uint64) *math.HexOrDecimal256 {
	return math.NewHexOrDecimal256(int64(v))
}

func numValue(u *num.Uint) *math.HexOrDecimal256 {
	return (*math.HexOrDecimal256)(u.BigInt())
}

func orderMessage(o *types.Order, nonce *num.Uint) map[string]interface{} {
	fees := make([]interface{}, 0, len(o.Fees))
	for _, f := range o.Fees {
		fees = append(fees, map[string]interface{}{
			"rate":      (*math.HexOrDecimal256)(big.NewInt(int64(f.Rate))),
			"recipient": f.Recipient.Hex(),
		})
	}
	extra := o.ExtraParams
	if extra == nil {
		extra = []byte{}
	}
	return map[string]interface{}{
		"trader":         o.Trader.Hex(),
		"side":           (*math.HexOrDecimal256)(big.NewInt(int64(o.Side))),
		"matchingPolicy": o.MatchingPolicy.Hex(),
		"collection":     o.Collection.Hex(),
		"tokenId":        numValue(o.TokenID),
		"amount":         numValue(o.Amount),
		"paymentToken":   o.PaymentToken.Hex(),
		"price":          numValue(o.Price),
		"listingTime":    uintValue(o.ListingTime),
		"expirationTime": uintValue(o.ExpirationTime),
		"fees":           fees,
		"salt":           numValue(o.Salt),
		"extraParams":    extra,
		"nonce":          numValue(nonce),
	}
}

// hasher owns one typed data instance per engine, the domain never changes
// after construction.
type hasher struct {
	domain          apitypes.TypedDataDomain
	domainSeparator [32]byte
}

func newHasher(chainID uint64, verifyingContract common.Address) (*hasher, error) {
	h := &hasher{
		domain: apitypes.TypedDataDomain{
			Name:              DomainName,
			Version:           DomainVersion,
			ChainId:           math.NewHexOrDecimal256(int64(chainID)),
			VerifyingContract: verifyingContract.Hex(),
		},
	}
	td := apitypes.TypedData{
		Types:       typedDataTypes,
		PrimaryType: "EIP712Domain",
		Domain:      h.domain,
	}
	sep, err := td.HashStruct("EIP712Domain", td.Domain.Map())
	if err != nil {
		return nil, errors.Wrap(err, "computing domain separator")
	}
	copy(h.domainSeparator[:], sep)
	return h, nil
}

func (h *hasher) hashStruct(primaryType string, message map[string]interface{}) (common.Hash, error) {
	td := apitypes.TypedData{
		Types:       typedDataTypes,
		PrimaryType: primaryType,
		Domain:      h.domain,
		Message:     message,
	}
	b, err := td.HashStruct(primaryType, message)
	if err != nil {
		return common.Hash{}, errors.Wrapf(err, "hashing %s struct", primaryType)
	}
	return common.BytesToHash(b), nil
}

// LeafHash is the domain-less struct hash of an order bound to the
// trader's nonce. It is the order's identity and its bulk tree leaf.
func (h *hasher) LeafHash(o *types.Order, nonce *num.Uint) (common.Hash, error) {
	return h.hashStruct("Order", orderMessage(o, nonce))
}

// HashToSign wraps a struct hash into the final digest the trader signs:
// keccak(0x1901 ‖ domainSeparator ‖ structHash).
func (h *hasher) HashToSign(structHash common.Hash) common.Hash {
	return common.BytesToHash(crypto.Keccak256(
		[]byte("\x19\x01"),
		h.domainSeparator[:],
		structHash[:],
	))
}

// OracleStructHash hashes the OracleOrder wrapper binding the order digest
// to a ledger block number.
func (h *hasher) OracleStructHash(o *types.Order, nonce *num.Uint, blockNumber uint64) (common.Hash, error) {
	return h.hashStruct("OracleOrder", map[string]interface{}{
		"order":       orderMessage(o, nonce),
		"blockNumber": uintValue(blockNumber),
	})
}

// RootStructHash hashes the bulk signing root wrapper.
func (h *hasher) RootStructHash(root common.Hash) (common.Hash, error) {
	return h.hashStruct("Root", map[string]interface{}{
		"root": root[:],
	})
}
