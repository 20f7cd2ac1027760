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

package execution_test

import (
	"context"
	"crypto/ecdsa"
	"testing"
	"time"

	"code.superchief.io/superchief/core/collateral"
	"code.superchief.io/superchief/core/delegate"
	"code.superchief.io/superchief/core/execution"
	"code.superchief.io/superchief/core/execution/mocks"
	"code.superchief.io/superchief/core/policy"
	"code.superchief.io/superchief/core/signer"
	"code.superchief.io/superchief/core/types"
	"code.superchief.io/superchief/libs/num"
	"code.superchief.io/superchief/logging"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	self         = common.HexToAddress("0x00000000000000000000000000000000000000e1")
	weth         = common.HexToAddress("0x0000000000000000000000000000000000000e71")
	vault        = common.HexToAddress("0x0000000000000000000000000000000000000a01")
	unitPolicy   = common.HexToAddress("0x0000000000000000000000000000000000000011")
	collectionID = common.HexToAddress("0x0000000000000000000000000000000000000022")

	price = num.MustUintFromString("1000000000000000000")
)

type testExec struct {
	*execution.Engine
	ctrl   *gomock.Controller
	ts     *mocks.MockTimeService
	broker *mocks.MockBroker

	verifier *signer.Engine
	ledger   *collateral.Engine
	auth     *delegate.Engine

	ownerKey  *ecdsa.PrivateKey
	sellerKey *ecdsa.PrivateKey
	buyerKey  *ecdsa.PrivateKey
	oracleKey *ecdsa.PrivateKey

	owner  common.Address
	seller common.Address
	buyer  common.Address
}

func getTestExec(t *testing.T) *testExec {
	t.Helper()
	log := logging.NewTestLogger()
	ctrl := gomock.NewController(t)

	ts := mocks.NewMockTimeService(ctrl)
	ts.EXPECT().GetTimeNow().AnyTimes().Return(time.Unix(1000, 0))
	ts.EXPECT().GetHeight().AnyTimes().Return(uint64(100))
	broker := mocks.NewMockBroker(ctrl)
	broker.EXPECT().Send(gomock.Any()).AnyTimes()

	ownerKey, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	sellerKey, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	buyerKey, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	oracleKey, err := ethcrypto.GenerateKey()
	require.NoError(t, err)

	owner := ethcrypto.PubkeyToAddress(ownerKey.PublicKey)
	seller := ethcrypto.PubkeyToAddress(sellerKey.PublicKey)
	buyer := ethcrypto.PubkeyToAddress(buyerKey.PublicKey)

	verifier, err := signer.New(log, signer.NewDefaultConfig(), 1337, self)
	require.NoError(t, err)
	require.NoError(t, verifier.SetOracle(ethcrypto.PubkeyToAddress(oracleKey.PublicKey)))
	verifier.SetBlockRange(30)

	ledger := collateral.New(log, collateral.NewDefaultConfig())
	auth := delegate.New(log, delegate.NewDefaultConfig(), owner, ledger)
	sig, err := delegate.SignApproval(ownerKey, self, auth.AuthNonce())
	require.NoError(t, err)
	require.NoError(t, auth.ApproveContract(owner, self, "Marketplace", sig))

	policies := policy.NewManager(log, owner)
	require.NoError(t, policies.AddPolicy(owner, unitPolicy, policy.StandardUnitPolicy{}))

	eng := execution.New(log, execution.NewDefaultConfig(), owner, self, weth,
		verifier, auth, policies, ts, broker)

	// the seller owns token #1, the buyer has two units of wrapped and
	// native value each
	ledger.MintAsset(seller, collectionID, num.NewUint(1), num.UintOne())
	ledger.Deposit(buyer, weth, num.UintZero().Mul(price, num.NewUint(2)))
	ledger.Deposit(buyer, types.NativeToken, num.UintZero().Mul(price, num.NewUint(2)))

	return &testExec{
		Engine:    eng,
		ctrl:      ctrl,
		ts:        ts,
		broker:    broker,
		verifier:  verifier,
		ledger:    ledger,
		auth:      auth,
		ownerKey:  ownerKey,
		sellerKey: sellerKey,
		buyerKey:  buyerKey,
		oracleKey: oracleKey,
		owner:     owner,
		seller:    seller,
		buyer:     buyer,
	}
}

func (te *testExec) order(trader common.Address, side types.Side, salt uint64) *types.Order {
	return &types.Order{
		Trader:         trader,
		Side:           side,
		MatchingPolicy: unitPolicy,
		Collection:     collectionID,
		TokenID:        num.NewUint(1),
		Amount:         num.UintZero(),
		PaymentToken:   weth,
		Price:          price.Clone(),
		ListingTime:    100,
		ExpirationTime: 0,
		Fees:           []types.Fee{{Rate: 300, Recipient: vault}},
		Salt:           num.NewUint(salt),
		ExtraParams:    []byte{},
	}
}

// signedEnvelope packs the order with the trader signature and the
// oracle co-signature, the shape a third party submission needs.
func (te *testExec) signedEnvelope(t *testing.T, key *ecdsa.PrivateKey, o *types.Order) *types.OrderEnvelope {
	t.Helper()
	nonce := te.Nonce(o.Trader)
	v, r, s, err := te.verifier.SignOrder(key, o, nonce)
	require.NoError(t, err)
	oracle, err := te.verifier.SignOracle(te.oracleKey, o, nonce, 100)
	require.NoError(t, err)
	return &types.OrderEnvelope{
		Order:            o,
		V:                v,
		R:                r,
		S:                s,
		Oracle:           oracle,
		SignatureVersion: types.SignatureVersionSingle,
		BlockNumber:      100,
	}
}

func (te *testExec) directEnvelope(o *types.Order) *types.OrderEnvelope {
	return &types.OrderEnvelope{Order: o, SignatureVersion: types.SignatureVersionSingle}
}

// settle submits a standard sell/buy pair with the buyer as caller.
func (te *testExec) settle(t *testing.T) error {
	t.Helper()
	sell := te.signedEnvelope(t, te.sellerKey, te.order(te.seller, types.SideSell, 0))
	buy := te.directEnvelope(te.order(te.buyer, types.SideBuy, 0))
	return te.Execute(context.Background(), te.buyer, sell, buy, nil)
}

func TestSettlement(t *testing.T) {
	t.Run("Wrapped token settlement splits the price across fees and seller", testSettleWrapped)
	t.Run("Native settlement requires the exact attached value", testSettleNative)
	t.Run("Base fees stack on top of order fees", testSettleBaseFees)
	t.Run("Bulk signed order settles against its merkle proof", testSettleBulk)
	t.Run("Replaying a settled pair is rejected", testReplay)
	t.Run("A failing transfer leaves no state behind", testNoPartialState)
}

func TestExecuteRejections(t *testing.T) {
	t.Run("Halted engine rejects settlements but not cancellations", testClosed)
	t.Run("Unknown policy is rejected", testPolicyNotWhitelisted)
	t.Run("Crossed prices cannot be matched", testCannotMatch)
	t.Run("Arbitrary payment token is rejected", testInvalidPaymentToken)
	t.Run("Fee rates over the basis point bound are rejected", testFeesExceedPrice)
	t.Run("Revoked transfer approval aborts settlement untouched", testRevokedApproval)
	t.Run("Wrong signer fails authorization", testWrongSigner)
}

func TestOrderParameters(t *testing.T) {
	t.Run("An order listed in the future is not yet valid", testFutureListingTime)
	t.Run("An elapsed expiration time invalidates the order", testElapsedExpiration)
	t.Run("A zero expiration time never expires", testZeroExpiration)
	t.Run("A zero trader address is rejected", testZeroTrader)
}

func TestOrderInvalidation(t *testing.T) {
	t.Run("Cancelled order fails parameter validation", testCancelOrder)
	t.Run("Cancel is trader gated", testCancelNotTrader)
	t.Run("Cancelling many orders at once", testCancelOrders)
	t.Run("Nonce increment invalidates everything signed before", testIncrementNonce)
}

func testSettleWrapped(t *testing.T) {
	te := getTestExec(t)
	defer te.ctrl.Finish()

	require.NoError(t, te.settle(t))

	// 3% of 1e18 to the vault, the rest to the seller
	assert.Equal(t, "30000000000000000", te.ledger.BalanceOf(vault, weth).String())
	assert.Equal(t, "970000000000000000", te.ledger.BalanceOf(te.seller, weth).String())
	assert.Equal(t, price.String(), te.ledger.BalanceOf(te.buyer, weth).String())
	assert.Equal(t, te.buyer, te.ledger.OwnerOf(collectionID, num.NewUint(1)))
}

func testSettleNative(t *testing.T) {
	te := getTestExec(t)
	defer te.ctrl.Finish()

	sellOrder := te.order(te.seller, types.SideSell, 0)
	sellOrder.PaymentToken = types.NativeToken
	buyOrder := te.order(te.buyer, types.SideBuy, 0)
	buyOrder.PaymentToken = types.NativeToken

	sell := te.signedEnvelope(t, te.sellerKey, sellOrder)
	buy := te.directEnvelope(buyOrder)

	err := te.Execute(context.Background(), te.buyer, sell, buy, nil)
	assert.ErrorIs(t, err, execution.ErrIncorrectAttachedValue)

	err = te.Execute(context.Background(), te.buyer, sell, buy, num.NewUint(1))
	assert.ErrorIs(t, err, execution.ErrIncorrectAttachedValue)

	require.NoError(t, te.Execute(context.Background(), te.buyer, sell, buy, price.Clone()))
	assert.Equal(t, "970000000000000000", te.ledger.BalanceOf(te.seller, types.NativeToken).String())
	assert.Equal(t, te.buyer, te.ledger.OwnerOf(collectionID, num.NewUint(1)))
}

func testSettleBaseFees(t *testing.T) {
	te := getTestExec(t)
	defer te.ctrl.Finish()

	baseRecipient := common.HexToAddress("0x0000000000000000000000000000000000000a02")
	require.NoError(t, te.auth.UpdateBaseFee(te.owner, []types.BaseFee{
		{Label: "SuperChief Platform Fee", Rate: 200, Recipient: baseRecipient},
	}))

	require.NoError(t, te.settle(t))
	assert.Equal(t, "30000000000000000", te.ledger.BalanceOf(vault, weth).String())
	assert.Equal(t, "20000000000000000", te.ledger.BalanceOf(baseRecipient, weth).String())
	assert.Equal(t, "950000000000000000", te.ledger.BalanceOf(te.seller, weth).String())
}

func testSettleBulk(t *testing.T) {
	te := getTestExec(t)
	defer te.ctrl.Finish()

	orders := []*types.Order{
		te.order(te.seller, types.SideSell, 0),
		te.order(te.seller, types.SideSell, 1),
		te.order(te.seller, types.SideSell, 2),
	}
	nonce := te.Nonce(te.seller)
	v, r, s, tree, err := te.verifier.SignBulk(te.sellerKey, orders, nonce)
	require.NoError(t, err)

	leaf, err := te.verifier.LeafHash(orders[0], nonce)
	require.NoError(t, err)
	path, err := tree.Proof(leaf)
	require.NoError(t, err)
	oracle, err := te.verifier.SignOracle(te.oracleKey, orders[0], nonce, 100)
	require.NoError(t, err)

	sell := &types.OrderEnvelope{
		Order:            orders[0],
		V:                v,
		R:                r,
		S:                s,
		MerklePath:       path,
		Oracle:           oracle,
		SignatureVersion: types.SignatureVersionBulk,
		BlockNumber:      100,
	}
	buy := te.directEnvelope(te.order(te.buyer, types.SideBuy, 0))

	require.NoError(t, te.Execute(context.Background(), te.buyer, sell, buy, nil))
	assert.Equal(t, te.buyer, te.ledger.OwnerOf(collectionID, num.NewUint(1)))
}

func testReplay(t *testing.T) {
	te := getTestExec(t)
	defer te.ctrl.Finish()

	require.NoError(t, te.settle(t))
	assert.ErrorIs(t, te.settle(t), execution.ErrSellInvalidParameters)
}

func testNoPartialState(t *testing.T) {
	te := getTestExec(t)
	defer te.ctrl.Finish()

	// drain the buyer first so the value leg must fail
	require.NoError(t, te.ledger.TransferBatch([]*types.Transfer{
		types.NewValueTransfer(te.buyer, te.owner, weth, num.UintZero().Mul(price, num.NewUint(2))),
	}))

	err := te.settle(t)
	require.Error(t, err)

	sellHash, herr := te.verifier.LeafHash(te.order(te.seller, types.SideSell, 0), te.Nonce(te.seller))
	require.NoError(t, herr)
	assert.False(t, te.IsCancelledOrFilled(sellHash))
	assert.Equal(t, te.seller, te.ledger.OwnerOf(collectionID, num.NewUint(1)))
}

func testClosed(t *testing.T) {
	te := getTestExec(t)
	defer te.ctrl.Finish()

	assert.ErrorIs(t, te.Close(te.seller), execution.ErrNotOwner)
	require.NoError(t, te.Close(te.owner))

	assert.ErrorIs(t, te.settle(t), execution.ErrClosed)

	// cancellation keeps working while closed
	buyOrder := te.order(te.buyer, types.SideBuy, 0)
	require.NoError(t, te.CancelOrder(context.Background(), te.buyer, buyOrder))

	require.NoError(t, te.Open(te.owner))
	assert.ErrorIs(t, te.settle(t), execution.ErrBuyInvalidParameters)
}

func testPolicyNotWhitelisted(t *testing.T) {
	te := getTestExec(t)
	defer te.ctrl.Finish()

	sellOrder := te.order(te.seller, types.SideSell, 0)
	sellOrder.MatchingPolicy = common.HexToAddress("0x0000000000000000000000000000000000000012")
	buyOrder := te.order(te.buyer, types.SideBuy, 0)
	buyOrder.MatchingPolicy = sellOrder.MatchingPolicy

	sell := te.signedEnvelope(t, te.sellerKey, sellOrder)
	buy := te.directEnvelope(buyOrder)

	err := te.Execute(context.Background(), te.buyer, sell, buy, nil)
	assert.ErrorIs(t, err, execution.ErrPolicyNotWhitelisted)
}

func testCannotMatch(t *testing.T) {
	te := getTestExec(t)
	defer te.ctrl.Finish()

	sellOrder := te.order(te.seller, types.SideSell, 0)
	sellOrder.Price = num.UintZero().Mul(price, num.NewUint(2))
	sell := te.signedEnvelope(t, te.sellerKey, sellOrder)
	buy := te.directEnvelope(te.order(te.buyer, types.SideBuy, 0))

	err := te.Execute(context.Background(), te.buyer, sell, buy, nil)
	assert.ErrorIs(t, err, execution.ErrOrdersCannotMatch)
}

func testInvalidPaymentToken(t *testing.T) {
	te := getTestExec(t)
	defer te.ctrl.Finish()

	other := common.HexToAddress("0x0000000000000000000000000000000000000e72")
	sellOrder := te.order(te.seller, types.SideSell, 0)
	sellOrder.PaymentToken = other
	buyOrder := te.order(te.buyer, types.SideBuy, 0)
	buyOrder.PaymentToken = other

	sell := te.signedEnvelope(t, te.sellerKey, sellOrder)
	buy := te.directEnvelope(buyOrder)

	err := te.Execute(context.Background(), te.buyer, sell, buy, nil)
	assert.ErrorIs(t, err, execution.ErrInvalidPaymentToken)
}

func testFeesExceedPrice(t *testing.T) {
	te := getTestExec(t)
	defer te.ctrl.Finish()

	// 300 bps on the order plus 9701 base crosses the bound
	require.NoError(t, te.auth.UpdateBaseFee(te.owner, []types.BaseFee{
		{Label: "SuperChief Platform Fee", Rate: 9701, Recipient: vault},
	}))

	assert.ErrorIs(t, te.settle(t), execution.ErrFeesExceedPrice)
}

func testRevokedApproval(t *testing.T) {
	te := getTestExec(t)
	defer te.ctrl.Finish()

	te.auth.RevokeApproval(te.seller)

	err := te.settle(t)
	assert.ErrorIs(t, err, delegate.ErrRevokedApproval)
	assert.Equal(t, te.seller, te.ledger.OwnerOf(collectionID, num.NewUint(1)))
	assert.Equal(t, num.UintZero().Mul(price, num.NewUint(2)).String(), te.ledger.BalanceOf(te.buyer, weth).String())
}

func testWrongSigner(t *testing.T) {
	te := getTestExec(t)
	defer te.ctrl.Finish()

	sell := te.signedEnvelope(t, te.buyerKey, te.order(te.seller, types.SideSell, 0))
	buy := te.directEnvelope(te.order(te.buyer, types.SideBuy, 0))

	err := te.Execute(context.Background(), te.buyer, sell, buy, nil)
	assert.ErrorIs(t, err, execution.ErrSellFailedAuthorization)
}

func testFutureListingTime(t *testing.T) {
	te := getTestExec(t)
	defer te.ctrl.Finish()

	sellOrder := te.order(te.seller, types.SideSell, 0)
	sellOrder.ListingTime = 2000
	sell := te.signedEnvelope(t, te.sellerKey, sellOrder)
	buy := te.directEnvelope(te.order(te.buyer, types.SideBuy, 0))

	err := te.Execute(context.Background(), te.buyer, sell, buy, nil)
	assert.ErrorIs(t, err, execution.ErrSellInvalidParameters)
}

func testElapsedExpiration(t *testing.T) {
	te := getTestExec(t)
	defer te.ctrl.Finish()

	sell := te.signedEnvelope(t, te.sellerKey, te.order(te.seller, types.SideSell, 0))
	buyOrder := te.order(te.buyer, types.SideBuy, 0)
	buyOrder.ExpirationTime = 999
	buy := te.directEnvelope(buyOrder)

	err := te.Execute(context.Background(), te.buyer, sell, buy, nil)
	assert.ErrorIs(t, err, execution.ErrBuyInvalidParameters)

	// expiring right on the clock is already too late
	buyOrder.ExpirationTime = 1000
	err = te.Execute(context.Background(), te.buyer, sell, buy, nil)
	assert.ErrorIs(t, err, execution.ErrBuyInvalidParameters)
}

func testZeroExpiration(t *testing.T) {
	te := getTestExec(t)
	defer te.ctrl.Finish()

	sell := te.signedEnvelope(t, te.sellerKey, te.order(te.seller, types.SideSell, 0))
	buyOrder := te.order(te.buyer, types.SideBuy, 0)
	buyOrder.ExpirationTime = 2000
	buy := te.directEnvelope(buyOrder)

	require.NoError(t, te.Execute(context.Background(), te.buyer, sell, buy, nil))
	assert.Equal(t, te.buyer, te.ledger.OwnerOf(collectionID, num.NewUint(1)))
}

func testZeroTrader(t *testing.T) {
	te := getTestExec(t)
	defer te.ctrl.Finish()

	sellOrder := te.order(common.Address{}, types.SideSell, 0)
	sell := te.signedEnvelope(t, te.sellerKey, sellOrder)
	buy := te.directEnvelope(te.order(te.buyer, types.SideBuy, 0))

	err := te.Execute(context.Background(), te.buyer, sell, buy, nil)
	assert.ErrorIs(t, err, execution.ErrSellInvalidParameters)

	sell = te.signedEnvelope(t, te.sellerKey, te.order(te.seller, types.SideSell, 0))
	buy = te.directEnvelope(te.order(common.Address{}, types.SideBuy, 0))
	err = te.Execute(context.Background(), te.buyer, sell, buy, nil)
	assert.ErrorIs(t, err, execution.ErrBuyInvalidParameters)
}

func testCancelOrder(t *testing.T) {
	te := getTestExec(t)
	defer te.ctrl.Finish()

	buyOrder := te.order(te.buyer, types.SideBuy, 0)
	require.NoError(t, te.CancelOrder(context.Background(), te.buyer, buyOrder))

	assert.ErrorIs(t, te.settle(t), execution.ErrBuyInvalidParameters)
}

func testCancelNotTrader(t *testing.T) {
	te := getTestExec(t)
	defer te.ctrl.Finish()

	buyOrder := te.order(te.buyer, types.SideBuy, 0)
	err := te.CancelOrder(context.Background(), te.seller, buyOrder)
	assert.ErrorIs(t, err, execution.ErrNotTrader)
}

func testCancelOrders(t *testing.T) {
	te := getTestExec(t)
	defer te.ctrl.Finish()

	orders := []*types.Order{
		te.order(te.buyer, types.SideBuy, 0),
		te.order(te.buyer, types.SideBuy, 1),
	}
	require.NoError(t, te.CancelOrders(context.Background(), te.buyer, orders))

	for _, o := range orders {
		hash, err := te.verifier.LeafHash(o, te.Nonce(te.buyer))
		require.NoError(t, err)
		assert.True(t, te.IsCancelledOrFilled(hash))
	}
}

func testIncrementNonce(t *testing.T) {
	te := getTestExec(t)
	defer te.ctrl.Finish()

	sell := te.signedEnvelope(t, te.sellerKey, te.order(te.seller, types.SideSell, 0))
	buy := te.directEnvelope(te.order(te.buyer, types.SideBuy, 0))

	te.IncrementNonce(context.Background(), te.seller)
	assert.Equal(t, "1", te.Nonce(te.seller).String())

	err := te.Execute(context.Background(), te.buyer, sell, buy, nil)
	assert.ErrorIs(t, err, execution.ErrSellFailedAuthorization)

	// resigned under the new nonce the same order settles
	sell = te.signedEnvelope(t, te.sellerKey, te.order(te.seller, types.SideSell, 0))
	require.NoError(t, te.Execute(context.Background(), te.buyer, sell, buy, nil))
}
