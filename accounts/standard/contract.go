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

package standard

import (
	"math/big"

	"github.com/bsi-ethereum/go-aa/accounts/abi"
	"github.com/bsi-ethereum/go-aa/core/host"
	"github.com/ethereum/go-ethereum/common"
)

// Run serves ABI encoded calls arriving through the host. The immediate
// caller of the frame is the identity every gate checks.
func (a *Account) Run(frame *host.Frame, input []byte) ([]byte, error) {
	if len(input) == 0 {
		// Plain value transfers fund the account.
		return nil, nil
	}
	method, args, err := abi.Decode(abi.AccountABI, input)
	if err != nil {
		return nil, err
	}
	switch method.Name {
	case "validateUserOp":
		op := abi.ToUserOperation(args[0])
		result, err := a.ValidateUserOp(frame.Caller, op, common.Hash(args[1].([32]byte)), args[2].(*big.Int))
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(result)

	case "execute":
		_, err := a.Execute(frame.Caller, args[0].(common.Address), args[1].(*big.Int), args[2].([]byte))
		return nil, err

	case "executeBatch":
		return nil, a.ExecuteBatch(frame.Caller, args[0].([]common.Address), args[1].([]*big.Int), args[2].([][]byte))

	case "transferOwnership":
		return nil, a.TransferOwnership(frame.Caller, args[0].(common.Address))

	case "owner":
		return method.Outputs.Pack(a.Owner())

	case "entryPoint":
		return method.Outputs.Pack(a.EntryPoint())

	case "getNonce":
		nonce, err := a.GetNonce(new(big.Int))
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(nonce)

	case "getDeposit":
		deposit, err := a.GetDeposit()
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(deposit)

	case "addDeposit":
		// The attached value already reached the account.
		return nil, a.AddDeposit(a.self, frame.Value)

	case "withdrawDepositTo":
		return nil, a.WithdrawDepositTo(frame.Caller, args[0].(common.Address), args[1].(*big.Int))
	}
	return nil, abi.ErrUnknownMethod
}
