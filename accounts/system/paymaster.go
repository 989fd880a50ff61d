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
	"errors"
	"fmt"
	"math/big"

	"github.com/bsi-ethereum/go-aa/accounts"
	"github.com/bsi-ethereum/go-aa/accounts/abi"
	"github.com/bsi-ethereum/go-aa/core/types"
	"github.com/ethereum/go-ethereum/common"
)

// ErrShortPaymasterInput is returned when the paymaster input carries no flow
// selector.
var ErrShortPaymasterInput = errors.New("paymaster input shorter than a flow selector")

var (
	generalFlow       = abi.Selector(abi.PaymasterFlowABI, "general")
	approvalBasedFlow = abi.Selector(abi.PaymasterFlowABI, "approvalBased")
)

// PrepareForPaymaster readies the account for a paymaster sponsored
// transaction. The general flow needs nothing; the approval based flow grants
// the paymaster at least the requested allowance on the fee token. Only the
// bootloader may call it.
func (a *Account) PrepareForPaymaster(caller common.Address, txHash, possibleSignedHash common.Hash, tx *types.Transaction) error {
	if err := a.gate.Authorize(caller, accounts.Strict); err != nil {
		return err
	}
	input := tx.PaymasterInput
	if len(input) < 4 {
		return ErrShortPaymasterInput
	}
	var selector [4]byte
	copy(selector[:], input[:4])

	switch selector {
	case generalFlow:
		return nil
	case approvalBasedFlow:
		args, err := abi.PaymasterFlowABI.Methods["approvalBased"].Inputs.Unpack(input[4:])
		if err != nil {
			return fmt.Errorf("invalid approval based paymaster input: %w", err)
		}
		token, minAllowance := args[0].(common.Address), args[1].(*big.Int)
		return a.approvePaymaster(token, tx.PaymasterAddress(), minAllowance)
	}
	return &accounts.UnsupportedPaymasterFlowError{Selector: selector}
}

// approvePaymaster raises the paymaster's allowance on token to minAllowance
// if it is lower, resetting it to zero first.
func (a *Account) approvePaymaster(token, paymaster common.Address, minAllowance *big.Int) error {
	input, err := abi.TokenABI.Pack("allowance", a.self, paymaster)
	if err != nil {
		return err
	}
	out, err := a.backend.StaticCall(a.self, token, input)
	if err != nil {
		return fmt.Errorf("allowance query failed: %w", err)
	}
	current, err := abi.UnpackUint256(abi.TokenABI, "allowance", out)
	if err != nil {
		return err
	}
	if current.Cmp(minAllowance) >= 0 {
		return nil
	}
	for _, amount := range []*big.Int{new(big.Int), minAllowance} {
		input, err := abi.TokenABI.Pack("approve", paymaster, amount)
		if err != nil {
			return err
		}
		if _, err := a.backend.Call(a.self, token, nil, input); err != nil {
			return accounts.NewExecutionFailedError(token, err)
		}
	}
	a.logger.Debug("Approved paymaster", "token", token, "paymaster", paymaster, "allowance", minAllowance)
	return nil
}
