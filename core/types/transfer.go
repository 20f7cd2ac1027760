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
	"fmt"

	"code.superchief.io/superchief/libs/num"

	"github.com/ethereum/go-ethereum/common"
)

// TransferKind discriminates value movements from asset movements.
type TransferKind uint8

const (
	TransferKindValue TransferKind = iota
	TransferKindAsset
)

// Transfer is one staged balance movement. A settlement produces a batch
// of these which is committed atomically or not at all.
type Transfer struct {
	Kind TransferKind
	From common.Address
	To   common.Address
	// Token is the payment token for value transfers, NativeToken for the
	// native value token.
	Token common.Address
	// Collection and TokenID identify the asset for asset transfers.
	Collection common.Address
	TokenID    *num.Uint
	Amount     *num.Uint
}

// NewValueTransfer stages a value movement in the given payment token.
func NewValueTransfer(from, to, token common.Address, amount *num.Uint) *Transfer {
	return &Transfer{
		Kind:   TransferKindValue,
		From:   from,
		To:     to,
		Token:  token,
		Amount: amount.Clone(),
	}
}

// NewAssetTransfer stages an asset movement, amount is the quantity for
// fungible collections and ignored (treated as 1) for unit collections.
func NewAssetTransfer(from, to, collection common.Address, tokenID, amount *num.Uint) *Transfer {
	return &Transfer{
		Kind:       TransferKindAsset,
		From:       from,
		To:         to,
		Collection: collection,
		TokenID:    tokenID.Clone(),
		Amount:     amount.Clone(),
	}
}

func (t *Transfer) String() string {
	if t.Kind == TransferKindValue {
		return fmt.Sprintf("value %s %s -> %s token %s", t.Amount, t.From.Hex(), t.To.Hex(), t.Token.Hex())
	}
	return fmt.Sprintf("asset %s#%s x%s %s -> %s", t.Collection.Hex(), t.TokenID, t.Amount, t.From.Hex(), t.To.Hex())
}
