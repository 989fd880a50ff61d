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

package entrypoint

import (
	"math/big"

	"github.com/bsi-ethereum/go-aa/accounts/abi"
	"github.com/bsi-ethereum/go-aa/core/host"
	"github.com/bsi-ethereum/go-aa/core/types"
	"github.com/ethereum/go-ethereum/common"
)

// Run serves ABI encoded calls. Plain value transfers are credited to the
// deposit of the sender.
func (ep *EntryPoint) Run(frame *host.Frame, input []byte) ([]byte, error) {
	if len(input) == 0 {
		ep.credit(frame.Caller, frame.Value)
		return nil, nil
	}
	method, args, err := abi.Decode(abi.EntryPointABI, input)
	if err != nil {
		return nil, err
	}
	switch method.Name {
	case "handleOps":
		tuples := abi.ToUserOperations(args[0])
		ops := make([]*types.UserOperation, len(tuples))
		for i := range tuples {
			ops[i] = &tuples[i]
		}
		return nil, ep.HandleOps(ops, args[1].(common.Address))

	case "getNonce":
		nonce, _ := ep.GetNonce(args[0].(common.Address), args[1].(*big.Int))
		return method.Outputs.Pack(nonce)

	case "incrementNonce":
		ep.IncrementNonce(frame.Caller, args[0].(*big.Int))
		return nil, nil

	case "getUserOpHash":
		hash, err := ep.GetUserOpHash(abi.ToUserOperation(args[0]))
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(hash)

	case "depositTo":
		ep.credit(args[0].(common.Address), frame.Value)
		return nil, nil

	case "balanceOf":
		balance, _ := ep.BalanceOf(args[0].(common.Address))
		return method.Outputs.Pack(balance)

	case "withdrawTo":
		return nil, ep.WithdrawTo(frame.Caller, args[0].(common.Address), args[1].(*big.Int))
	}
	return nil, abi.ErrUnknownMethod
}
