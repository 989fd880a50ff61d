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

package abi

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/bsi-ethereum/go-aa/core/types"
	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrShortInput is returned when calldata is too short to carry a selector.
	ErrShortInput = errors.New("calldata shorter than a method selector")

	// ErrUnknownMethod is returned by contracts for methods they do not serve.
	ErrUnknownMethod = errors.New("unknown method")
)

// Decode resolves the method addressed by input and unpacks its arguments.
func Decode(a ethabi.ABI, input []byte) (*ethabi.Method, []interface{}, error) {
	if len(input) < 4 {
		return nil, nil, ErrShortInput
	}
	method, err := a.MethodById(input[:4])
	if err != nil {
		return nil, nil, err
	}
	args, err := method.Inputs.Unpack(input[4:])
	if err != nil {
		return nil, nil, fmt.Errorf("unpack %s arguments: %w", method.Name, err)
	}
	return method, args, nil
}

// Selector returns the 4 byte identifier of a method.
func Selector(a ethabi.ABI, name string) [4]byte {
	var sel [4]byte
	if method, ok := a.Methods[name]; ok {
		copy(sel[:], method.ID)
	}
	return sel
}

// PackValidateUserOp encodes validateUserOp(op, hash, missingAccountFunds).
func PackValidateUserOp(op *types.UserOperation, hash common.Hash, missing *big.Int) ([]byte, error) {
	if missing == nil {
		missing = new(big.Int)
	}
	return AccountABI.Pack("validateUserOp", *op.WithDefaults(), hash, missing)
}

// PackHandleOps encodes handleOps(ops, beneficiary).
func PackHandleOps(ops []*types.UserOperation, beneficiary common.Address) ([]byte, error) {
	tuples := make([]types.UserOperation, len(ops))
	for i, op := range ops {
		tuples[i] = *op.WithDefaults()
	}
	return EntryPointABI.Pack("handleOps", tuples, beneficiary)
}

// PackTransactionCall encodes one of the system account's transaction entry
// points taking (txHash, suggestedSignedHash, transaction).
func PackTransactionCall(method string, txHash, suggested common.Hash, tx *types.Transaction) ([]byte, error) {
	return SystemAccountABI.Pack(method, txHash, suggested, *tx.WithDefaults())
}

// PackExecuteTransactionFromOutside encodes executeTransactionFromOutside(tx).
func PackExecuteTransactionFromOutside(tx *types.Transaction) ([]byte, error) {
	return SystemAccountABI.Pack("executeTransactionFromOutside", *tx.WithDefaults())
}

// ToUserOperation converts an unpacked tuple into a user operation.
func ToUserOperation(v interface{}) *types.UserOperation {
	return ethabi.ConvertType(v, new(types.UserOperation)).(*types.UserOperation)
}

// ToUserOperations converts an unpacked tuple array into user operations.
func ToUserOperations(v interface{}) []types.UserOperation {
	return *ethabi.ConvertType(v, new([]types.UserOperation)).(*[]types.UserOperation)
}

// ToTransaction converts an unpacked tuple into a transaction.
func ToTransaction(v interface{}) *types.Transaction {
	return ethabi.ConvertType(v, new(types.Transaction)).(*types.Transaction)
}

// UnpackAddress decodes a single address return value.
func UnpackAddress(a ethabi.ABI, method string, data []byte) (common.Address, error) {
	out, err := a.Unpack(method, data)
	if err != nil {
		return common.Address{}, err
	}
	return *ethabi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

// UnpackUint256 decodes a single uint256 return value.
func UnpackUint256(a ethabi.ABI, method string, data []byte) (*big.Int, error) {
	out, err := a.Unpack(method, data)
	if err != nil {
		return nil, err
	}
	return *ethabi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// UnpackBytes4 decodes a single bytes4 return value.
func UnpackBytes4(a ethabi.ABI, method string, data []byte) ([4]byte, error) {
	out, err := a.Unpack(method, data)
	if err != nil {
		return [4]byte{}, err
	}
	return *ethabi.ConvertType(out[0], new([4]byte)).(*[4]byte), nil
}
