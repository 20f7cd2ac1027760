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
	"code.superchief.io/superchief/core/types"
	"code.superchief.io/superchief/logging"

	"github.com/ethereum/go-ethereum/common"
)

// The base fee registry rides on the transfer authority because its
// administration shares the authorization nonce space with contract
// approvals, a fee entry cannot be injected by a compromised admin key
// acting alone.

// AddBaseFee appends a protocol fee entry. Owner-gated and additionally
// signed by the owner key over the owner address bound to the current
// authorization nonce, which is consumed on success.
func (e *Engine) AddBaseFee(caller common.Address, label string, rate uint16, recipient common.Address, sig types.Signature) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.owner {
		return ErrNotOwner
	}
	if recipient == (common.Address{}) {
		return ErrZeroAddress
	}

	digest := ApprovalDigest(e.owner, e.authNonce)
	signer, err := recoverPersonalSigner(digest, sig)
	if err != nil || signer != e.owner {
		return ErrInvalidSignature
	}

	e.authNonce++
	e.baseFees = append(e.baseFees, types.BaseFee{Label: label, Rate: rate, Recipient: recipient})
	e.log.Info("base fee added",
		logging.String("label", label),
		logging.Uint16("rate", rate),
		logging.String("fraction", types.FeeFraction(uint32(rate)).String()),
		logging.String("recipient", recipient.Hex()),
	)
	return nil
}

// UpdateBaseFee replaces the whole registry in one call.
func (e *Engine) UpdateBaseFee(caller common.Address, entries []types.BaseFee) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.owner {
		return ErrNotOwner
	}
	for _, f := range entries {
		if f.Recipient == (common.Address{}) {
			return ErrZeroAddress
		}
	}
	e.baseFees = append([]types.BaseFee(nil), entries...)
	e.log.Info("base fee registry replaced", logging.Int("entries", len(entries)))
	return nil
}

// ClearBaseFee empties the registry.
func (e *Engine) ClearBaseFee(caller common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.owner {
		return ErrNotOwner
	}
	e.baseFees = nil
	e.log.Info("base fee registry cleared")
	return nil
}

// BaseFees returns the registry in application order.
func (e *Engine) BaseFees() []types.BaseFee {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]types.BaseFee(nil), e.baseFees...)
}
