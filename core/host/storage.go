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

package host

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// SlotIndex returns the storage key of a top-level contract variable.
func SlotIndex(index uint64) common.Hash {
	return common.BigToHash(new(big.Int).SetUint64(index))
}

// MappingSlot returns the storage key of entry key in a mapping stored at slot,
// laid out the way Solidity lays out mappings.
func MappingSlot(key, slot common.Hash) common.Hash {
	return crypto.Keccak256Hash(key[:], slot[:])
}

// AddressKey left-pads an address into a mapping key.
func AddressKey(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

// GetStateBig reads a storage slot as an unsigned integer.
func (h *Host) GetStateBig(addr common.Address, key common.Hash) *big.Int {
	return h.state.GetState(addr, key).Big()
}

// SetStateBig writes an unsigned integer to a storage slot.
func (h *Host) SetStateBig(addr common.Address, key common.Hash, value *big.Int) {
	h.state.SetState(addr, key, common.BigToHash(value))
}
