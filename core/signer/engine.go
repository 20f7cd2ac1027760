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
	"code.superchief.io/superchief/core/types"
	"code.superchief.io/superchief/libs/num"
	"code.superchief.io/superchief/logging"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
)

var (
	ErrInvalidSignatureValues = errors.New("invalid signature values")
	ErrZeroAddress            = errors.New("address cannot be zero")
)

// Engine is the signature verifier. It never returns an error from
// verification itself: a submitted authorization either checks out or it
// does not, and malformed material simply does not check out.
type Engine struct {
	Config
	log *logging.Logger

	hasher *hasher

	oracle     common.Address
	blockRange uint64

	// verified bulk roots, keyed by trader+root. One bulk signature
	// authorizes many orders so the recover result is worth keeping.
	rootCache *lru.Cache
}

// New instantiates the signature verifier for the given chain and
// verifying contract identity.
func New(log *logging.Logger, cfg Config, chainID uint64, verifyingContract common.Address) (*Engine, error) {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	h, err := newHasher(chainID, verifyingContract)
	if err != nil {
		return nil, err
	}
	cache, err := lru.New(cfg.RootCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "creating root cache")
	}
	return &Engine{
		Config:    cfg,
		log:       log,
		hasher:    h,
		rootCache: cache,
	}, nil
}

// ReloadConf updates the internal configuration.
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

// SetOracle sets the key all oracle co-signatures must recover to.
func (e *Engine) SetOracle(oracle common.Address) error {
	if oracle == (common.Address{}) {
		return ErrZeroAddress
	}
	e.oracle = oracle
	return nil
}

// SetBlockRange sets the maximum age, in blocks, of an oracle attestation.
func (e *Engine) SetBlockRange(blockRange uint64) {
	e.blockRange = blockRange
}

func (e *Engine) BlockRange() uint64 {
	return e.blockRange
}

// LeafHash returns the order's identity hash at the given nonce.
func (e *Engine) LeafHash(o *types.Order, nonce *num.Uint) (common.Hash, error) {
	return e.hasher.LeafHash(o, nonce)
}

// HashToSign returns the domain separated digest a trader signs for a
// single order.
func (e *Engine) HashToSign(o *types.Order, nonce *num.Uint) (common.Hash, error) {
	leaf, err := e.hasher.LeafHash(o, nonce)
	if err != nil {
		return common.Hash{}, err
	}
	return e.hasher.HashToSign(leaf), nil
}

// ValidateSignatures checks the full authorization envelope of one order:
// the trader's own authorization (direct, single or bulk) and, whenever
// the order is not submitted by its trader, the oracle co-signature bound
// to a recent block. It reports false rather than erroring: a mode
// mismatch or malformed signature material is simply not valid.
func (e *Engine) ValidateSignatures(caller common.Address, env *types.OrderEnvelope, leafHash common.Hash, nonce *num.Uint, currentBlock uint64) bool {
	if env.Order.Trader == caller {
		// direct - the trader is the caller, nothing to verify
		return true
	}

	if !e.validateOracleAuthorization(env, nonce, currentBlock) {
		if e.log.IsDebug() {
			e.log.Debug("oracle authorization failed",
				logging.String("trader", env.Order.Trader.Hex()),
				logging.Uint64("block-number", env.BlockNumber),
				logging.Uint64("current-block", currentBlock),
			)
		}
		return false
	}

	if !env.HasSignature() {
		return false
	}

	switch env.SignatureVersion {
	case types.SignatureVersionSingle:
		digest := e.hasher.HashToSign(leafHash)
		signer, err := recoverSigner(digest, env.V, env.R, env.S)
		return err == nil && signer == env.Order.Trader
	case types.SignatureVersionBulk:
		return e.validateBulkSignature(env, leafHash)
	default:
		return false
	}
}

func (e *Engine) validateBulkSignature(env *types.OrderEnvelope, leafHash common.Hash) bool {
	root := ComputeRoot(leafHash, env.MerklePath)

	cacheKey := env.Order.Trader.Hex() + root.Hex()
	if _, ok := e.rootCache.Get(cacheKey); ok {
		return true
	}

	rootStruct, err := e.hasher.RootStructHash(root)
	if err != nil {
		return false
	}
	digest := e.hasher.HashToSign(rootStruct)
	signer, err := recoverSigner(digest, env.V, env.R, env.S)
	if err != nil || signer != env.Order.Trader {
		return false
	}
	e.rootCache.Add(cacheKey, struct{}{})
	return true
}

func (e *Engine) validateOracleAuthorization(env *types.OrderEnvelope, nonce *num.Uint, currentBlock uint64) bool {
	if env.Oracle == nil {
		return false
	}
	if env.BlockNumber > currentBlock || currentBlock-env.BlockNumber > e.blockRange {
		return false
	}
	structHash, err := e.hasher.OracleStructHash(env.Order, nonce, env.BlockNumber)
	if err != nil {
		return false
	}
	digest := e.hasher.HashToSign(structHash)
	signer, err := recoverSigner(digest, env.Oracle.V, env.Oracle.R, env.Oracle.S)
	return err == nil && signer == e.oracle
}

// recoverSigner runs ECDSA public key recovery over a 32 byte digest.
// Anything malformed fails closed with an error, never a panic.
func recoverSigner(digest common.Hash, v uint8, r, s [32]byte) (common.Address, error) {
	if v != 27 && v != 28 {
		return common.Address{}, ErrInvalidSignatureValues
	}
	sig := make([]byte, 65)
	copy(sig[:32], r[:])
	copy(sig[32:64], s[:])
	sig[64] = v - 27

	pub, err := ethcrypto.SigToPub(digest[:], sig)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "recovering signer")
	}
	return ethcrypto.PubkeyToAddress(*pub), nil
}
