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

package policy

import (
	"sync"

	"code.superchief.io/superchief/logging"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

var (
	ErrNotOwner       = errors.New("caller is not the owner")
	ErrZeroAddress    = errors.New("address cannot be zero")
	ErrNilPolicy      = errors.New("policy cannot be nil")
	ErrUnknownPolicy  = errors.New("policy is not whitelisted")
	ErrAlreadyManaged = errors.New("policy is already whitelisted")
)

const namedLogger = "policy"

// Manager is the whitelist of matching policies orders may name.
type Manager struct {
	log *logging.Logger
	mu  sync.RWMutex

	owner    common.Address
	policies map[common.Address]Policy
}

// NewManager instantiates an empty policy whitelist gated on the owner.
func NewManager(log *logging.Logger, owner common.Address) *Manager {
	return &Manager{
		log:      log.Named(namedLogger),
		owner:    owner,
		policies: map[common.Address]Policy{},
	}
}

// AddPolicy whitelists a policy under the given id.
func (m *Manager) AddPolicy(caller common.Address, id common.Address, p Policy) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if caller != m.owner {
		return ErrNotOwner
	}
	if id == (common.Address{}) {
		return ErrZeroAddress
	}
	if p == nil {
		return ErrNilPolicy
	}
	if _, ok := m.policies[id]; ok {
		return ErrAlreadyManaged
	}
	m.policies[id] = p
	m.log.Info("policy whitelisted", logging.String("policy", id.Hex()))
	return nil
}

// RemovePolicy removes a policy from the whitelist.
func (m *Manager) RemovePolicy(caller common.Address, id common.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if caller != m.owner {
		return ErrNotOwner
	}
	if _, ok := m.policies[id]; !ok {
		return ErrUnknownPolicy
	}
	delete(m.policies, id)
	m.log.Info("policy removed from whitelist", logging.String("policy", id.Hex()))
	return nil
}

// IsWhitelisted returns whether the policy id is whitelisted.
func (m *Manager) IsWhitelisted(id common.Address) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.policies[id]
	return ok
}

// Policy returns the whitelisted policy registered under the id.
func (m *Manager) Policy(id common.Address) (Policy, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.policies[id]
	return p, ok
}
