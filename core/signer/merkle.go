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
	"bytes"
	"sort"

	"code.superchief.io/superchief/libs/crypto"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// The bulk signing tree uses sorted-pair hashing: each parent is
// keccak(min(a,b) ‖ max(a,b)), so a proof needs no left/right flags.

var ErrLeafNotInTree = errors.New("leaf not in tree")

func hashPair(a, b common.Hash) common.Hash {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return common.BytesToHash(crypto.Keccak256(a[:], b[:]))
}

// ComputeRoot folds a proof path into the root the leaf commits to.
func ComputeRoot(leaf common.Hash, path [][32]byte) common.Hash {
	node := leaf
	for _, p := range path {
		node = hashPair(node, common.Hash(p))
	}
	return node
}

// MerkleTree is the client-side counterpart, building the tree a bulk
// signature commits to and the proofs submitted alongside each order.
type MerkleTree struct {
	// levels[0] are the sorted leaves, the last level is the root alone.
	levels [][]common.Hash
}

// NewMerkleTree builds a tree over the given leaves. Leaves are sorted
// first, an odd node is promoted to the next level unhashed.
func NewMerkleTree(leaves []common.Hash) *MerkleTree {
	sorted := make([]common.Hash, len(leaves))
	copy(sorted, leaves)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i][:], sorted[j][:]) < 0
	})

	levels := [][]common.Hash{sorted}
	for level := sorted; len(level) > 1; {
		next := make([]common.Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next = append(next, level[i])
				continue
			}
			next = append(next, hashPair(level[i], level[i+1]))
		}
		levels = append(levels, next)
		level = next
	}
	return &MerkleTree{levels: levels}
}

// Root of the tree. A single-leaf tree's root is the leaf itself.
func (t *MerkleTree) Root() common.Hash {
	top := t.levels[len(t.levels)-1]
	if len(top) == 0 {
		return common.Hash{}
	}
	return top[0]
}

// Proof returns the sibling path for the given leaf.
func (t *MerkleTree) Proof(leaf common.Hash) ([][32]byte, error) {
	idx := -1
	for i, l := range t.levels[0] {
		if l == leaf {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrLeafNotInTree
	}

	path := make([][32]byte, 0, len(t.levels))
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := idx ^ 1
		if sibling < len(level) {
			path = append(path, [32]byte(level[sibling]))
		}
		idx /= 2
	}
	return path, nil
}
