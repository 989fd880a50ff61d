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

import (
	"github.com/bsi-ethereum/go-aa"
	"github.com/bsi-ethereum/go-aa/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

// OwnerSlot is the storage slot holding an account's owner.
var OwnerSlot = common.Hash{}

var ownershipTransferredTopic = abi.AccountABI.Events["OwnershipTransferred"].ID

type ownerStore interface {
	aa.StateReader
	aa.StateWriter
}

// Ownable keeps the single owner of an account in the account's storage, so
// that ownership changes roll back with the call that made them.
type Ownable struct {
	store  ownerStore
	self   common.Address
	logger log.Logger
}

// NewOwnable binds owner bookkeeping to the storage of self.
func NewOwnable(store ownerStore, self common.Address) *Ownable {
	return &Ownable{store: store, self: self, logger: log.New("account", self)}
}

// Owner returns the current owner.
func (o *Ownable) Owner() common.Address {
	return common.BytesToAddress(o.store.GetState(o.self, OwnerSlot).Bytes())
}

// Initialize sets the first owner. It can only succeed once.
func (o *Ownable) Initialize(owner common.Address) error {
	if o.Owner() != (common.Address{}) {
		return ErrAlreadyInitialized
	}
	if owner == (common.Address{}) {
		return &InvalidOwnerError{Owner: owner}
	}
	o.setOwner(owner)
	return nil
}

// TransferOwnership hands ownership to newOwner. The caller must be the
// current owner or one of the additionally admitted identities.
func (o *Ownable) TransferOwnership(caller, newOwner common.Address, admitted ...common.Address) error {
	if !o.isAdmitted(caller, admitted) {
		return &NotOwnerError{Caller: caller}
	}
	if newOwner == (common.Address{}) {
		return &InvalidOwnerError{Owner: newOwner}
	}
	o.setOwner(newOwner)
	return nil
}

func (o *Ownable) isAdmitted(caller common.Address, admitted []common.Address) bool {
	if caller == o.Owner() {
		return true
	}
	for _, addr := range admitted {
		if caller == addr {
			return true
		}
	}
	return false
}

func (o *Ownable) setOwner(owner common.Address) {
	previous := o.Owner()
	o.store.SetState(o.self, OwnerSlot, common.BytesToHash(owner.Bytes()))
	o.store.EmitLog(o.self, []common.Hash{
		ownershipTransferredTopic,
		common.BytesToHash(previous.Bytes()),
		common.BytesToHash(owner.Bytes()),
	}, nil)
	o.logger.Debug("Ownership transferred", "previous", previous, "owner", owner)
}
