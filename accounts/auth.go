// Copyright 2026 The go-aa Authors
// This file is part of the go-aa library.
//
// The go-aa library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-aa library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-aa library. If not, see <http://www.gnu.org/licenses/>.

package accounts

import "github.com/ethereum/go-ethereum/common"

// GateMode selects which callers an entry point admits.
type GateMode uint8

const (
	// Strict admits the privileged caller only.
	Strict GateMode = iota

	// OwnerOrPrivileged admits the privileged caller and the current owner.
	OwnerOrPrivileged
)

// String implements fmt.Stringer.
func (m GateMode) String() string {
	switch m {
	case Strict:
		return "strict"
	case OwnerOrPrivileged:
		return "owner-or-privileged"
	default:
		return "unknown"
	}
}

// Gate is the caller check run as the first step of every protected entry
// point. The privileged caller is fixed when the gate is built; the owner is
// read on every check.
type Gate struct {
	privileged common.Address
	owner      func() common.Address
}

// NewGate creates a caller gate.
func NewGate(privileged common.Address, owner func() common.Address) Gate {
	return Gate{privileged: privileged, owner: owner}
}

// Privileged returns the privileged caller.
func (g Gate) Privileged() common.Address { return g.privileged }

// Authorize fails with *UnauthorizedCallerError unless caller is admitted
// under mode.
func (g Gate) Authorize(caller common.Address, mode GateMode) error {
	if caller == g.privileged {
		return nil
	}
	if mode == OwnerOrPrivileged {
		if owner := g.owner(); owner != (common.Address{}) && caller == owner {
			return nil
		}
	}
	return &UnauthorizedCallerError{Caller: caller, Mode: mode}
}
