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

package collateral_test

import (
	"testing"

	"code.superchief.io/superchief/core/collateral"
	"code.superchief.io/superchief/core/types"
	"code.superchief.io/superchief/libs/num"
	"code.superchief.io/superchief/logging"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice      = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob        = common.HexToAddress("0x00000000000000000000000000000000000000b0")
	carol      = common.HexToAddress("0x00000000000000000000000000000000000000c0")
	weth       = common.HexToAddress("0x0000000000000000000000000000000000000e71")
	collection = common.HexToAddress("0x0000000000000000000000000000000000000717")
)

func getTestEngine(t *testing.T) *collateral.Engine {
	t.Helper()
	return collateral.New(logging.NewTestLogger(), collateral.NewDefaultConfig())
}

func TestLedger(t *testing.T) {
	t.Run("Deposits are reflected in balances", testDeposits)
	t.Run("Minted assets are reflected in holdings", testMint)
	t.Run("Value transfer moves the full amount", testValueTransfer)
	t.Run("Asset transfer moves the holding", testAssetTransfer)
	t.Run("Insufficient funds fail the whole batch", testBatchAtomicity)
	t.Run("Batch can chain through an intermediate account", testBatchChaining)
}

func testDeposits(t *testing.T) {
	e := getTestEngine(t)

	assert.True(t, e.BalanceOf(alice, weth).IsZero())
	e.Deposit(alice, weth, num.NewUint(100))
	e.Deposit(alice, weth, num.NewUint(50))
	assert.Equal(t, "150", e.BalanceOf(alice, weth).String())
}

func testMint(t *testing.T) {
	e := getTestEngine(t)

	tokenID := num.NewUint(7)
	assert.True(t, e.HoldingOf(alice, collection, tokenID).IsZero())
	e.MintAsset(alice, collection, tokenID, num.UintOne())
	assert.Equal(t, "1", e.HoldingOf(alice, collection, tokenID).String())
	assert.Equal(t, alice, e.OwnerOf(collection, tokenID))
}

func testValueTransfer(t *testing.T) {
	e := getTestEngine(t)
	e.Deposit(alice, weth, num.NewUint(100))

	err := e.TransferBatch([]*types.Transfer{
		types.NewValueTransfer(alice, bob, weth, num.NewUint(40)),
	})
	require.NoError(t, err)
	assert.Equal(t, "60", e.BalanceOf(alice, weth).String())
	assert.Equal(t, "40", e.BalanceOf(bob, weth).String())
}

func testAssetTransfer(t *testing.T) {
	e := getTestEngine(t)
	tokenID := num.NewUint(7)
	e.MintAsset(alice, collection, tokenID, num.UintOne())

	err := e.TransferBatch([]*types.Transfer{
		types.NewAssetTransfer(alice, bob, collection, tokenID, num.UintOne()),
	})
	require.NoError(t, err)
	assert.True(t, e.HoldingOf(alice, collection, tokenID).IsZero())
	assert.Equal(t, "1", e.HoldingOf(bob, collection, tokenID).String())
	assert.Equal(t, bob, e.OwnerOf(collection, tokenID))
}

func testBatchAtomicity(t *testing.T) {
	e := getTestEngine(t)
	tokenID := num.NewUint(7)
	e.Deposit(alice, weth, num.NewUint(100))
	e.MintAsset(bob, collection, tokenID, num.UintOne())

	// second transfer overdraws, the first must be rolled back
	err := e.TransferBatch([]*types.Transfer{
		types.NewValueTransfer(alice, bob, weth, num.NewUint(40)),
		types.NewValueTransfer(alice, carol, weth, num.NewUint(70)),
		types.NewAssetTransfer(bob, alice, collection, tokenID, num.UintOne()),
	})
	require.ErrorIs(t, err, collateral.ErrInsufficientFunds)

	assert.Equal(t, "100", e.BalanceOf(alice, weth).String())
	assert.True(t, e.BalanceOf(bob, weth).IsZero())
	assert.True(t, e.BalanceOf(carol, weth).IsZero())
	assert.Equal(t, "1", e.HoldingOf(bob, collection, tokenID).String())
}

func testBatchChaining(t *testing.T) {
	e := getTestEngine(t)
	e.Deposit(alice, weth, num.NewUint(10))

	// bob starts empty, the batch routes value through him
	err := e.TransferBatch([]*types.Transfer{
		types.NewValueTransfer(alice, bob, weth, num.NewUint(10)),
		types.NewValueTransfer(bob, carol, weth, num.NewUint(10)),
	})
	require.NoError(t, err)
	assert.True(t, e.BalanceOf(alice, weth).IsZero())
	assert.True(t, e.BalanceOf(bob, weth).IsZero())
	assert.Equal(t, "10", e.BalanceOf(carol, weth).String())
}
