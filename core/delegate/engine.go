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

package delegate

import (
	"encoding/binary"
	"sync"

	"code.superchief.io/superchief/core/types"
	"code.superchief.io/superchief/libs/crypto"
	"code.superchief.io/superchief/libs/num"
	"code.superchief.io/superchief/logging"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

var (
	ErrNotOwner            = errors.New("caller is not the owner")
	ErrZeroAddress         = errors.New("address cannot be zero")
	ErrInvalidSignature    = errors.New("invalid signature")
	ErrContractNotApproved = errors.New("contract is not approved to make transfers")
	ErrRevokedApproval     = errors.New("user has revoked approval")
)

// Ledger is the collateral engine the delegated transfers land on.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/mocks.go -package mocks code.superchief.io/superchief/core/delegate Ledger
type Ledger interface {
	TransferBatch(transfers []*types.Transfer) error
}

// Engine is the transfer authority. It is the only component allowed to
// move balances on the ledger, and it only does so on behalf of an
// allow-listed contract acting for a user who has not revoked approval.
type Engine struct {
	Config
	log *logging.Logger
	mu  sync.Mutex

	owner  common.Address
	ledger Ledger

	// approved contracts by address, value is the human readable label
	// supplied at approval time.
	contracts map[common.Address]string
	revoked   map[common.Address]struct{}
	authNonce uint64

	// protocol level fee entries applied at settlement on top of the
	// order declared fees, in insertion order.
	baseFees []types.BaseFee
}

// New instantiates the transfer authority. The owner address gates the
// contract allow-list and is the key approval signatures must recover to.
func New(log *logging.Logger, cfg Config, owner common.Address, ledger Ledger) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	return &Engine{
		Config:    cfg,
		log:       log,
		owner:     owner,
		ledger:    ledger,
		contracts: map[common.Address]string{},
		revoked:   map[common.Address]struct{}{},
	}
}

// ReloadConf updates the internal configuration of the engine.
func (e *Engine) ReloadConf(cfg Config) {
	e.log.Info("reloading configuration")
	if e.log.GetLevel() != cfg.Level.Get() {
		e.log.Info("updating log level",
			logging.String("old", e.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		e.log.SetLevel(cfg.Level.Get())
	}

	e.Config = cfg
}

// ApprovalDigest is the message hash the owner personal-signs to approve
// a contract, binding the contract address to the authorization nonce.
func ApprovalDigest(contract common.Address, authNonce uint64) common.Hash {
	var nonce [32]byte
	binary.BigEndian.PutUint64(nonce[24:], authNonce)
	return common.BytesToHash(crypto.Keccak256(contract.Bytes(), nonce[:]))
}

// ApproveContract adds a contract to the transfer allow-list. The caller
// must be the owner and must present an owner signature over the contract
// address bound to the current authorization nonce, which is consumed on
// success.
func (e *Engine) ApproveContract(caller, contract common.Address, label string, sig types.Signature) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.owner {
		return ErrNotOwner
	}
	if contract == (common.Address{}) {
		return ErrZeroAddress
	}

	digest := ApprovalDigest(contract, e.authNonce)
	signer, err := recoverPersonalSigner(digest, sig)
	if err != nil || signer != e.owner {
		return ErrInvalidSignature
	}

	e.authNonce++
	e.contracts[contract] = label
	e.log.Info("contract approved for transfers",
		logging.String("contract", contract.Hex()),
		logging.String("label", label),
	)
	return nil
}

// DenyContract removes a contract from the allow-list, immediately.
func (e *Engine) DenyContract(caller, contract common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.owner {
		return ErrNotOwner
	}
	delete(e.contracts, contract)
	e.log.Info("contract denied transfers", logging.String("contract", contract.Hex()))
	return nil
}

// IsApprovedContract returns whether the contract is on the allow-list.
func (e *Engine) IsApprovedContract(contract common.Address) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.contracts[contract]
	return ok
}

// AuthNonce returns the current authorization nonce, the one the next
// approval signature has to be produced against.
func (e *Engine) AuthNonce() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.authNonce
}

// GrantApproval re-enables delegated transfers for the calling user.
// Approval is the default state, this only undoes a revocation.
func (e *Engine) GrantApproval(user common.Address) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.revoked, user)
}

// RevokeApproval blocks any delegated transfer out of the calling user's
// accounts, immediately and regardless of the contract asking.
func (e *Engine) RevokeApproval(user common.Address) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.revoked[user] = struct{}{}
}

// HasRevokedApproval returns whether the user has revoked approval.
func (e *Engine) HasRevokedApproval(user common.Address) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.revoked[user]
	return ok
}

// TransferAsset moves an asset on behalf of an approved contract.
func (e *Engine) TransferAsset(contract, from, to, collection common.Address, tokenID, amount *num.Uint) error {
	return e.ExecuteBatch(contract, []*types.Transfer{
		types.NewAssetTransfer(from, to, collection, tokenID, amount),
	})
}

// TransferValue moves value in a payment token on behalf of an approved
// contract.
func (e *Engine) TransferValue(contract, from, to, token common.Address, amount *num.Uint) error {
	return e.ExecuteBatch(contract, []*types.Transfer{
		types.NewValueTransfer(from, to, token, amount),
	})
}

// ExecuteBatch applies the whole batch of transfers atomically on behalf
// of an approved contract. Every source account must belong to a user who
// has not revoked approval, the ledger then commits all or nothing.
func (e *Engine) ExecuteBatch(contract common.Address, transfers []*types.Transfer) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.contracts[contract]; !ok {
		return ErrContractNotApproved
	}
	for _, t := range transfers {
		if _, ok := e.revoked[t.From]; ok {
			return errors.Wrapf(ErrRevokedApproval, "from %s", t.From.Hex())
		}
	}
	return e.ledger.TransferBatch(transfers)
}

// recoverPersonalSigner recovers the key behind an EIP-191 personal-sign
// signature over a 32 byte message hash.
func recoverPersonalSigner(msg common.Hash, sig types.Signature) (common.Address, error) {
	if sig.V != 27 && sig.V != 28 {
		return common.Address{}, ErrInvalidSignature
	}
	raw := make([]byte, 65)
	copy(raw[:32], sig.R[:])
	copy(raw[32:64], sig.S[:])
	raw[64] = sig.V - 27

	pub, err := ethcrypto.SigToPub(accounts.TextHash(msg[:]), raw)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "recovering signer")
	}
	return ethcrypto.PubkeyToAddress(*pub), nil
}
