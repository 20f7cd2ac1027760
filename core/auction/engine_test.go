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

package auction_test

import (
	"context"
	"crypto/ecdsa"
	"testing"
	"time"

	"code.superchief.io/superchief/core/auction"
	"code.superchief.io/superchief/core/auction/mocks"
	"code.superchief.io/superchief/core/collateral"
	"code.superchief.io/superchief/core/delegate"
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
	house        = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	weth         = common.HexToAddress("0x0000000000000000000000000000000000000e71")
	vault        = common.HexToAddress("0x0000000000000000000000000000000000000a01")
	collectionID = common.HexToAddress("0x0000000000000000000000000000000000000022")

	minPrice = num.MustUintFromString("1000000000000000000")
)

type testAuction struct {
	*auction.Engine
	ctrl   *gomock.Controller
	ts     *mocks.MockTimeService
	broker *mocks.MockBroker

	ledger *collateral.Engine
	auth   *delegate.Engine

	now time.Time

	feeKey *ecdsa.PrivateKey

	admin   common.Address
	owner   common.Address
	bidder  common.Address
	bidder2 common.Address
}

func getTestAuction(t *testing.T) *testAuction {
	t.Helper()
	log := logging.NewTestLogger()
	ctrl := gomock.NewController(t)

	te := &testAuction{
		ctrl:    ctrl,
		now:     time.Unix(1000, 0),
		owner:   common.HexToAddress("0x0000000000000000000000000000000000000101"),
		bidder:  common.HexToAddress("0x0000000000000000000000000000000000000102"),
		bidder2: common.HexToAddress("0x0000000000000000000000000000000000000103"),
	}

	te.ts = mocks.NewMockTimeService(ctrl)
	te.ts.EXPECT().GetTimeNow().AnyTimes().DoAndReturn(func() time.Time { return te.now })
	te.ts.EXPECT().GetHeight().AnyTimes().Return(uint64(100))
	te.broker = mocks.NewMockBroker(ctrl)
	te.broker.EXPECT().Send(gomock.Any()).AnyTimes()

	feeKey, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	te.feeKey = feeKey

	adminKey, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	te.admin = ethcrypto.PubkeyToAddress(adminKey.PublicKey)

	te.ledger = collateral.New(log, collateral.NewDefaultConfig())
	te.auth = delegate.New(log, delegate.NewDefaultConfig(), te.admin, te.ledger)
	sig, err := delegate.SignApproval(adminKey, house, te.auth.AuthNonce())
	require.NoError(t, err)
	require.NoError(t, te.auth.ApproveContract(te.admin, house, "AuctionManager", sig))

	te.Engine = auction.New(log, auction.NewDefaultConfig(), house,
		ethcrypto.PubkeyToAddress(feeKey.PublicKey), te.auth, te.ts, te.broker)

	te.ledger.MintAsset(te.owner, collectionID, num.NewUint(1), num.UintOne())
	te.ledger.Deposit(te.bidder, weth, num.UintZero().Mul(minPrice, num.NewUint(10)))
	te.ledger.Deposit(te.bidder2, weth, num.UintZero().Mul(minPrice, num.NewUint(10)))

	return te
}

func (te *testAuction) request() *types.AuctionRequest {
	return &types.AuctionRequest{
		AssetType:     types.AssetTypeUnit,
		Collection:    collectionID,
		TokenID:       num.NewUint(1),
		Amount:        num.UintZero(),
		PaymentToken:  weth,
		MinPrice:      minPrice.Clone(),
		MinWinPercent: 105,
		Duration:      3600,
		Fees:          []types.Fee{{Rate: 300, Recipient: vault}},
	}
}

// create opens an auction for the default request, signed by the fee
// signer on the owner's behalf.
func (te *testAuction) create(t *testing.T) common.Hash {
	t.Helper()
	req := te.request()
	sig, err := auction.SignRequest(te.feeKey, te.owner, req)
	require.NoError(t, err)
	id, err := te.CreateAuction(context.Background(), te.owner, req, sig)
	require.NoError(t, err)
	return id
}

func (te *testAuction) advance(d time.Duration) {
	te.now = te.now.Add(d)
}

func TestCreateAuction(t *testing.T) {
	t.Run("Creation escrows the asset with the auction house", testCreateEscrows)
	t.Run("The same request cannot open two auctions", testCreateDuplicate)
	t.Run("A request the fee signer did not sign is rejected", testCreateBadSignature)
	t.Run("Malformed requests are rejected", testCreateBadRequest)
}

func TestBidding(t *testing.T) {
	t.Run("First bid has to meet the minimum price", testBidMinimum)
	t.Run("Later bids have to clear the win margin over the last", testBidMargin)
	t.Run("The outbid party is refunded in the same batch", testBidRefund)
	t.Run("No bids after the auction ends", testBidEnded)
	t.Run("Unknown auction", testBidUnknown)
}

func TestFinish(t *testing.T) {
	t.Run("No finishing a running auction", testFinishTooEarly)
	t.Run("Only the last bidder can finish a bid auction", testFinishPermission)
	t.Run("Finishing pays out fees, owner and winner", testFinishPayout)
	t.Run("The owner finishes an auction nobody bid on", testFinishUnbid)
	t.Run("A finished auction stays finished", testFinishTwice)
}

func TestCancel(t *testing.T) {
	t.Run("The owner cancels an unbid auction and gets the asset back", testCancelUnbid)
	t.Run("Cancellation is owner gated and blocked by a standing bid", testCancelGates)
}

func testCreateEscrows(t *testing.T) {
	te := getTestAuction(t)
	defer te.ctrl.Finish()

	id := te.create(t)

	assert.Equal(t, house, te.ledger.OwnerOf(collectionID, num.NewUint(1)))
	a, ok := te.Auction(id)
	require.True(t, ok)
	assert.Equal(t, te.owner, a.Owner)
	assert.Equal(t, types.AuctionStateActive, a.State)
	assert.False(t, a.HasBid())
	assert.Equal(t, uint64(1000), a.StartTime)
}

func testCreateDuplicate(t *testing.T) {
	te := getTestAuction(t)
	defer te.ctrl.Finish()

	te.create(t)

	req := te.request()
	sig, err := auction.SignRequest(te.feeKey, te.owner, req)
	require.NoError(t, err)
	_, err = te.CreateAuction(context.Background(), te.owner, req, sig)
	assert.ErrorIs(t, err, auction.ErrAuctionExists)
}

func testCreateBadSignature(t *testing.T) {
	te := getTestAuction(t)
	defer te.ctrl.Finish()

	otherKey, err := ethcrypto.GenerateKey()
	require.NoError(t, err)

	req := te.request()
	sig, err := auction.SignRequest(otherKey, te.owner, req)
	require.NoError(t, err)
	_, err = te.CreateAuction(context.Background(), te.owner, req, sig)
	assert.ErrorIs(t, err, auction.ErrInvalidSignature)

	// a signature over somebody else's request does not transfer
	sig, err = auction.SignRequest(te.feeKey, te.bidder, req)
	require.NoError(t, err)
	_, err = te.CreateAuction(context.Background(), te.owner, req, sig)
	assert.ErrorIs(t, err, auction.ErrInvalidSignature)
}

func testCreateBadRequest(t *testing.T) {
	te := getTestAuction(t)
	defer te.ctrl.Finish()

	cases := []struct {
		name   string
		mangle func(*types.AuctionRequest)
		err    error
	}{
		{"nil price", func(r *types.AuctionRequest) { r.MinPrice = nil }, auction.ErrNilRequestField},
		{"zero collection", func(r *types.AuctionRequest) { r.Collection = common.Address{} }, auction.ErrZeroAddress},
		{"win percent under 100", func(r *types.AuctionRequest) { r.MinWinPercent = 99 }, auction.ErrInvalidWinPercent},
		{"zero duration", func(r *types.AuctionRequest) { r.Duration = 0 }, auction.ErrInvalidRequest},
		{"fungible zero amount", func(r *types.AuctionRequest) {
			r.AssetType = types.AssetTypeFungible
			r.Amount = num.UintZero()
		}, auction.ErrInvalidRequest},
	}
	for _, c := range cases {
		req := te.request()
		c.mangle(req)
		_, err := te.CreateAuction(context.Background(), te.owner, req, types.Signature{})
		assert.ErrorIs(t, err, c.err, c.name)
	}
}

func testBidMinimum(t *testing.T) {
	te := getTestAuction(t)
	defer te.ctrl.Finish()

	id := te.create(t)

	low := num.UintZero().Sub(minPrice, num.UintOne())
	err := te.Bid(context.Background(), te.bidder, id, low)
	assert.ErrorIs(t, err, auction.ErrBidBelowMinimum)

	require.NoError(t, te.Bid(context.Background(), te.bidder, id, minPrice.Clone()))
	a, _ := te.Auction(id)
	assert.Equal(t, te.bidder, a.LastBidder)
	assert.Equal(t, minPrice.String(), a.BidPrice.String())
}

func testBidMargin(t *testing.T) {
	te := getTestAuction(t)
	defer te.ctrl.Finish()

	id := te.create(t)
	require.NoError(t, te.Bid(context.Background(), te.bidder, id, minPrice.Clone()))

	// the margin is 105%, a 1% raise is not enough
	raise := num.MustUintFromString("1010000000000000000")
	err := te.Bid(context.Background(), te.bidder2, id, raise)
	assert.ErrorIs(t, err, auction.ErrBidBelowLast)

	raise = num.MustUintFromString("1050000000000000000")
	require.NoError(t, te.Bid(context.Background(), te.bidder2, id, raise))
	a, _ := te.Auction(id)
	assert.Equal(t, te.bidder2, a.LastBidder)
}

func testBidRefund(t *testing.T) {
	te := getTestAuction(t)
	defer te.ctrl.Finish()

	id := te.create(t)
	start := te.ledger.BalanceOf(te.bidder, weth)

	require.NoError(t, te.Bid(context.Background(), te.bidder, id, minPrice.Clone()))
	assert.Equal(t, num.UintZero().Sub(start, minPrice).String(), te.ledger.BalanceOf(te.bidder, weth).String())

	raise := num.MustUintFromString("1050000000000000000")
	require.NoError(t, te.Bid(context.Background(), te.bidder2, id, raise))

	// outbid, made whole again
	assert.Equal(t, start.String(), te.ledger.BalanceOf(te.bidder, weth).String())
	assert.Equal(t, raise.String(), te.ledger.BalanceOf(house, weth).String())
}

func testBidEnded(t *testing.T) {
	te := getTestAuction(t)
	defer te.ctrl.Finish()

	id := te.create(t)
	te.advance(3600 * time.Second)

	err := te.Bid(context.Background(), te.bidder, id, minPrice.Clone())
	assert.ErrorIs(t, err, auction.ErrAuctionEnded)
}

func testBidUnknown(t *testing.T) {
	te := getTestAuction(t)
	defer te.ctrl.Finish()

	err := te.Bid(context.Background(), te.bidder, common.Hash{0x01}, minPrice.Clone())
	assert.ErrorIs(t, err, auction.ErrUnknownAuction)
}

func testFinishTooEarly(t *testing.T) {
	te := getTestAuction(t)
	defer te.ctrl.Finish()

	id := te.create(t)
	require.NoError(t, te.Bid(context.Background(), te.bidder, id, minPrice.Clone()))

	err := te.Finish(context.Background(), te.bidder, id)
	assert.ErrorIs(t, err, auction.ErrAuctionNotOver)
}

func testFinishPermission(t *testing.T) {
	te := getTestAuction(t)
	defer te.ctrl.Finish()

	id := te.create(t)
	require.NoError(t, te.Bid(context.Background(), te.bidder, id, minPrice.Clone()))
	te.advance(3600 * time.Second)

	assert.ErrorIs(t, te.Finish(context.Background(), te.owner, id), auction.ErrNoFinishPermit)
	assert.ErrorIs(t, te.Finish(context.Background(), te.bidder2, id), auction.ErrNoFinishPermit)
	require.NoError(t, te.Finish(context.Background(), te.bidder, id))
}

func testFinishPayout(t *testing.T) {
	te := getTestAuction(t)
	defer te.ctrl.Finish()

	id := te.create(t)
	require.NoError(t, te.Bid(context.Background(), te.bidder, id, minPrice.Clone()))
	te.advance(3600 * time.Second)
	require.NoError(t, te.Finish(context.Background(), te.bidder, id))

	// 3% of 1e18 to the vault, the rest to the owner, asset to the winner
	assert.Equal(t, "30000000000000000", te.ledger.BalanceOf(vault, weth).String())
	assert.Equal(t, "970000000000000000", te.ledger.BalanceOf(te.owner, weth).String())
	assert.True(t, te.ledger.BalanceOf(house, weth).IsZero())
	assert.Equal(t, te.bidder, te.ledger.OwnerOf(collectionID, num.NewUint(1)))

	a, _ := te.Auction(id)
	assert.Equal(t, types.AuctionStateFinished, a.State)
}

func testFinishUnbid(t *testing.T) {
	te := getTestAuction(t)
	defer te.ctrl.Finish()

	id := te.create(t)
	te.advance(3600 * time.Second)

	assert.ErrorIs(t, te.Finish(context.Background(), te.bidder, id), auction.ErrNoFinishPermit)
	require.NoError(t, te.Finish(context.Background(), te.owner, id))
	assert.Equal(t, te.owner, te.ledger.OwnerOf(collectionID, num.NewUint(1)))
}

func testFinishTwice(t *testing.T) {
	te := getTestAuction(t)
	defer te.ctrl.Finish()

	id := te.create(t)
	require.NoError(t, te.Bid(context.Background(), te.bidder, id, minPrice.Clone()))
	te.advance(3600 * time.Second)
	require.NoError(t, te.Finish(context.Background(), te.bidder, id))

	err := te.Finish(context.Background(), te.bidder, id)
	assert.ErrorIs(t, err, auction.ErrAuctionNotActive)
}

func testCancelUnbid(t *testing.T) {
	te := getTestAuction(t)
	defer te.ctrl.Finish()

	id := te.create(t)
	require.NoError(t, te.Cancel(context.Background(), te.owner, id))
	assert.Equal(t, te.owner, te.ledger.OwnerOf(collectionID, num.NewUint(1)))

	a, _ := te.Auction(id)
	assert.Equal(t, types.AuctionStateCancelled, a.State)
}

func testCancelGates(t *testing.T) {
	te := getTestAuction(t)
	defer te.ctrl.Finish()

	id := te.create(t)
	assert.ErrorIs(t, te.Cancel(context.Background(), te.bidder, id), auction.ErrNotAuctionOwner)

	require.NoError(t, te.Bid(context.Background(), te.bidder, id, minPrice.Clone()))
	assert.ErrorIs(t, te.Cancel(context.Background(), te.owner, id), auction.ErrAuctionHasBid)
}
