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

// Package types contains the operation shapes submitted to smart accounts and the
// hashing rules that define what their owners sign.
package types

import (
	"encoding/json"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// UserOperation is an ERC-4337 v0.6 user operation. Field names follow the
// on-chain struct so it converts to and from the ABI tuple directly.
type UserOperation struct {
	Sender               common.Address
	Nonce                *big.Int
	InitCode             []byte
	CallData             []byte
	CallGasLimit         *big.Int
	VerificationGasLimit *big.Int
	PreVerificationGas   *big.Int
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
	PaymasterAndData     []byte
	Signature            []byte
}

var (
	addressT, _ = abi.NewType("address", "", nil)
	uint256T, _ = abi.NewType("uint256", "", nil)
	bytes32T, _ = abi.NewType("bytes32", "", nil)

	userOpPackArgs = abi.Arguments{
		{Name: "sender", Type: addressT},
		{Name: "nonce", Type: uint256T},
		{Name: "hashInitCode", Type: bytes32T},
		{Name: "hashCallData", Type: bytes32T},
		{Name: "callGasLimit", Type: uint256T},
		{Name: "verificationGasLimit", Type: uint256T},
		{Name: "preVerificationGas", Type: uint256T},
		{Name: "maxFeePerGas", Type: uint256T},
		{Name: "maxPriorityFeePerGas", Type: uint256T},
		{Name: "hashPaymasterAndData", Type: bytes32T},
	}
	userOpHashArgs = abi.Arguments{
		{Name: "userOpHash", Type: bytes32T},
		{Name: "entryPoint", Type: addressT},
		{Name: "chainId", Type: uint256T},
	}
)

// Pack encodes the operation without its signature, hashing the dynamic
// fields, the same way the entry point does before binding it to a chain.
func (op *UserOperation) Pack() ([]byte, error) {
	return userOpPackArgs.Pack(
		op.Sender,
		bigOrZero(op.Nonce),
		crypto.Keccak256Hash(op.InitCode),
		crypto.Keccak256Hash(op.CallData),
		bigOrZero(op.CallGasLimit),
		bigOrZero(op.VerificationGasLimit),
		bigOrZero(op.PreVerificationGas),
		bigOrZero(op.MaxFeePerGas),
		bigOrZero(op.MaxPriorityFeePerGas),
		crypto.Keccak256Hash(op.PaymasterAndData),
	)
}

// Hash returns the operation hash for the given entry point and chain:
// keccak256(abi.encode(keccak256(pack(op)), entryPoint, chainId)).
func (op *UserOperation) Hash(entryPoint common.Address, chainID *big.Int) (common.Hash, error) {
	packed, err := op.Pack()
	if err != nil {
		return common.Hash{}, err
	}
	enc, err := userOpHashArgs.Pack(crypto.Keccak256Hash(packed), entryPoint, bigOrZero(chainID))
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(enc), nil
}

// RequiredPrefund is the maximum the operation can cost: every gas limit it
// declares priced at its max fee.
func (op *UserOperation) RequiredPrefund() *big.Int {
	gas := new(big.Int).Add(bigOrZero(op.CallGasLimit), bigOrZero(op.VerificationGasLimit))
	gas.Add(gas, bigOrZero(op.PreVerificationGas))
	return gas.Mul(gas, bigOrZero(op.MaxFeePerGas))
}

// Paymaster returns the paymaster named in PaymasterAndData, if any.
func (op *UserOperation) Paymaster() (common.Address, bool) {
	if len(op.PaymasterAndData) < common.AddressLength {
		return common.Address{}, false
	}
	return common.BytesToAddress(op.PaymasterAndData[:common.AddressLength]), true
}

// Copy returns a deep copy of the operation.
func (op *UserOperation) Copy() *UserOperation {
	return &UserOperation{
		Sender:               op.Sender,
		Nonce:                copyBig(op.Nonce),
		InitCode:             common.CopyBytes(op.InitCode),
		CallData:             common.CopyBytes(op.CallData),
		CallGasLimit:         copyBig(op.CallGasLimit),
		VerificationGasLimit: copyBig(op.VerificationGasLimit),
		PreVerificationGas:   copyBig(op.PreVerificationGas),
		MaxFeePerGas:         copyBig(op.MaxFeePerGas),
		MaxPriorityFeePerGas: copyBig(op.MaxPriorityFeePerGas),
		PaymasterAndData:     common.CopyBytes(op.PaymasterAndData),
		Signature:            common.CopyBytes(op.Signature),
	}
}

// WithDefaults returns a copy with every nil numeric field set to zero, which
// the ABI encoder requires.
func (op *UserOperation) WithDefaults() *UserOperation {
	cpy := op.Copy()
	for _, f := range []**big.Int{
		&cpy.Nonce, &cpy.CallGasLimit, &cpy.VerificationGasLimit, &cpy.PreVerificationGas,
		&cpy.MaxFeePerGas, &cpy.MaxPriorityFeePerGas,
	} {
		if *f == nil {
			*f = new(big.Int)
		}
	}
	for _, b := range []*[]byte{&cpy.InitCode, &cpy.CallData, &cpy.PaymasterAndData, &cpy.Signature} {
		if *b == nil {
			*b = []byte{}
		}
	}
	return cpy
}

type userOperationJSON struct {
	Sender               *common.Address `json:"sender"`
	Nonce                *hexutil.Big    `json:"nonce"`
	InitCode             hexutil.Bytes   `json:"initCode"`
	CallData             hexutil.Bytes   `json:"callData"`
	CallGasLimit         *hexutil.Big    `json:"callGasLimit"`
	VerificationGasLimit *hexutil.Big    `json:"verificationGasLimit"`
	PreVerificationGas   *hexutil.Big    `json:"preVerificationGas"`
	MaxFeePerGas         *hexutil.Big    `json:"maxFeePerGas"`
	MaxPriorityFeePerGas *hexutil.Big    `json:"maxPriorityFeePerGas"`
	PaymasterAndData     hexutil.Bytes   `json:"paymasterAndData"`
	Signature            hexutil.Bytes   `json:"signature"`
}

// MarshalJSON encodes the operation in the bundler RPC format.
func (op UserOperation) MarshalJSON() ([]byte, error) {
	return json.Marshal(&userOperationJSON{
		Sender:               &op.Sender,
		Nonce:                (*hexutil.Big)(bigOrZero(op.Nonce)),
		InitCode:             op.InitCode,
		CallData:             op.CallData,
		CallGasLimit:         (*hexutil.Big)(bigOrZero(op.CallGasLimit)),
		VerificationGasLimit: (*hexutil.Big)(bigOrZero(op.VerificationGasLimit)),
		PreVerificationGas:   (*hexutil.Big)(bigOrZero(op.PreVerificationGas)),
		MaxFeePerGas:         (*hexutil.Big)(bigOrZero(op.MaxFeePerGas)),
		MaxPriorityFeePerGas: (*hexutil.Big)(bigOrZero(op.MaxPriorityFeePerGas)),
		PaymasterAndData:     op.PaymasterAndData,
		Signature:            op.Signature,
	})
}

// UnmarshalJSON decodes the bundler RPC format. The sender is required, every
// other field defaults to zero.
func (op *UserOperation) UnmarshalJSON(input []byte) error {
	var dec userOperationJSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	if dec.Sender == nil {
		return errors.New("missing required field 'sender' for UserOperation")
	}
	*op = UserOperation{
		Sender:               *dec.Sender,
		Nonce:                (*big.Int)(dec.Nonce),
		InitCode:             dec.InitCode,
		CallData:             dec.CallData,
		CallGasLimit:         (*big.Int)(dec.CallGasLimit),
		VerificationGasLimit: (*big.Int)(dec.VerificationGasLimit),
		PreVerificationGas:   (*big.Int)(dec.PreVerificationGas),
		MaxFeePerGas:         (*big.Int)(dec.MaxFeePerGas),
		MaxPriorityFeePerGas: (*big.Int)(dec.MaxPriorityFeePerGas),
		PaymasterAndData:     dec.PaymasterAndData,
		Signature:            dec.Signature,
	}
	return nil
}

func copyBig(b *big.Int) *big.Int {
	if b == nil {
		return nil
	}
	return new(big.Int).Set(b)
}

func bigOrZero(b *big.Int) *big.Int {
	if b == nil {
		return new(big.Int)
	}
	return b
}
