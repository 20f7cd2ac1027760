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
	"crypto/ecdsa"

	"code.superchief.io/superchief/core/types"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// SignApproval produces the owner signature ApproveContract expects for
// the given contract at the given authorization nonce. Client side
// counterpart of the verification, used by deploy tooling and tests.
func SignApproval(key *ecdsa.PrivateKey, contract common.Address, authNonce uint64) (types.Signature, error) {
	digest := ApprovalDigest(contract, authNonce)
	raw, err := ethcrypto.Sign(accounts.TextHash(digest[:]), key)
	if err != nil {
		return types.Signature{}, errors.Wrap(err, "signing approval")
	}
	var sig types.Signature
	copy(sig.R[:], raw[:32])
	copy(sig.S[:], raw[32:64])
	sig.V = raw[64] + 27
	return sig, nil
}
