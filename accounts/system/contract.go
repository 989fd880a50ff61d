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

package system

import (
	"math/big"

	"github.com/bsi-ethereum/go-aa/accounts/abi"
	"github.com/bsi-ethereum/go-aa/core/host"
	"github.com/ethereum/go-ethereum/common"
)

// Run serves ABI encoded calls arriving through the host.
func (a *Account) Run(frame *host.Frame, input []byte) ([]byte, error) {
	if len(input) == 0 {
		return nil, nil
	}
	method, args, err := abi.Decode(abi.SystemAccountABI, input)
	if err != nil {
		return nil, err
	}
	switch method.Name {
	case "validateTransaction":
		magic, err := a.ValidateTransaction(frame.Caller, args[0].([32]byte), args[1].([32]byte), abi.ToTransaction(args[2]))
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(magic)

	case "executeTransaction":
		return nil, a.ExecuteTransaction(frame.Caller, args[0].([32]byte), args[1].([32]byte), abi.ToTransaction(args[2]))

	case "executeTransactionFromOutside":
		return nil, a.ExecuteTransactionFromOutside(abi.ToTransaction(args[0]))

	case "payForTransaction":
		return nil, a.PayForTransaction(frame.Caller, args[0].([32]byte), args[1].([32]byte), abi.ToTransaction(args[2]))

	case "prepareForPaymaster":
		return nil, a.PrepareForPaymaster(frame.Caller, args[0].([32]byte), args[1].([32]byte), abi.ToTransaction(args[2]))

	case "isValidSignature":
		magic, err := a.IsValidSignature(args[0].([32]byte), args[1].([]byte))
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(magic)

	case "execute":
		_, err := a.Execute(frame.Caller, args[0].(common.Address), args[1].(*big.Int), args[2].([]byte))
		return nil, err

	case "transferOwnership":
		return nil, a.TransferOwnership(frame.Caller, args[0].(common.Address))

	case "owner":
		return method.Outputs.Pack(a.Owner())

	case "bootloader":
		return method.Outputs.Pack(a.PrivilegedCaller())
	}
	return nil, abi.ErrUnknownMethod
}
