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
	"crypto/ecdsa"

	"code.superchief.io/superchief/core/types"
	"code.superchief.io/superchief/libs/num"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// Client side signing counterparts of the verifier. These never run in
// the settlement path, they exist for order producers and the test
// suites, and guarantee both sides agree on the digests.

// SignOrder produces a single signature over the order bound to the
// trader's current nonce.
func (e *Engine) SignOrder(key *ecdsa.PrivateKey, o *types.Order, nonce *num.Uint) (uint8, [32]byte, [32]byte, error) {
	digest, err := e.HashToSign(o, nonce)
	if err != nil {
		return 0, [32]byte{}, [32]byte{}, err
	}
	return signDigest(key, digest)
}

// SignOracle produces the oracle co-signature binding the order digest to
// a ledger block number.
func (e *Engine) SignOracle(key *ecdsa.PrivateKey, o *types.Order, nonce *num.Uint, blockNumber uint64) (*types.OracleSignature, error) {
	structHash, err := e.hasher.OracleStructHash(o, nonce, blockNumber)
	if err != nil {
		return nil, err
	}
	v, r, s, err := signDigest(key, e.hasher.HashToSign(structHash))
	if err != nil {
		return nil, err
	}
	return &types.OracleSignature{V: v, R: r, S: s}, nil
}

// SignBulk builds the merkle tree over all the given orders of one trader
// and signs its root once. The returned tree yields the per order proof
// paths to submit alongside the shared signature.
func (e *Engine) SignBulk(key *ecdsa.PrivateKey, orders []*types.Order, nonce *num.Uint) (uint8, [32]byte, [32]byte, *MerkleTree, error) {
	if len(orders) == 0 {
		return 0, [32]byte{}, [32]byte{}, nil, errors.New("no orders to sign")
	}
	leaves := make([]common.Hash, 0, len(orders))
	for _, o := range orders {
		leaf, err := e.LeafHash(o, nonce)
		if err != nil {
			return 0, [32]byte{}, [32]byte{}, nil, err
		}
		leaves = append(leaves, leaf)
	}
	tree := NewMerkleTree(leaves)

	rootStruct, err := e.hasher.RootStructHash(tree.Root())
	if err != nil {
		return 0, [32]byte{}, [32]byte{}, nil, err
	}
	v, r, s, err := signDigest(key, e.hasher.HashToSign(rootStruct))
	if err != nil {
		return 0, [32]byte{}, [32]byte{}, nil, err
	}
	return v, r, s, tree, nil
}

func signDigest(key *ecdsa.PrivateKey, digest common.Hash) (uint8, [32]byte, [32]byte, error) {
	sig, err := ethcrypto.Sign(digest[:], key)
	if err != nil {
		return 0, [32]byte{}, [32]byte{}, errors.Wrap(err, "signing digest")
	}
	var r, s [32]byte
	copy(r[:], sig[:32])
	copy(s[:], sig[32:64])
	// go-ethereum yields the recovery id in [0,1], signatures carry 27/28
	return sig[64] + 27, r, s, nil
}
