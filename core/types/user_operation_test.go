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

package types

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

var testEntryPoint = common.HexToAddress("0x5FF137D4b0FDCD49DcA30c7CF57E578a026d2789")

func testUserOperation() *UserOperation {
	return &UserOperation{
		Sender:               common.HexToAddress("0xacc0"),
		Nonce:                big.NewInt(0),
		CallData:             []byte{0x01},
		CallGasLimit:         big.NewInt(100_000),
		VerificationGasLimit: big.NewInt(100_000),
		PreVerificationGas:   big.NewInt(21_000),
		MaxFeePerGas:         big.NewInt(1_000_000_000),
		MaxPriorityFeePerGas: big.NewInt(1_000_000_000),
		Signature:            []byte{0xaa},
	}
}

func TestUserOperationHash(t *testing.T) {
	t.Parallel()
	op := testUserOperation()
	hash, err := op.Hash(testEntryPoint, big.NewInt(1))
	require.NoError(t, err)

	// The signature is not covered.
	signed := op.Copy()
	signed.Signature = []byte{0xbb, 0xcc}
	same, err := signed.Hash(testEntryPoint, big.NewInt(1))
	require.NoError(t, err)
	require.Equal(t, hash, same)

	// Missing fields hash like zero ones.
	sparse := &UserOperation{Sender: op.Sender}
	dense := sparse.WithDefaults()
	h1, err := sparse.Hash(testEntryPoint, big.NewInt(1))
	require.NoError(t, err)
	h2, err := dense.Hash(testEntryPoint, big.NewInt(1))
	require.NoError(t, err)
	require.Equal(t, h1, h2)

	for _, mutate := range []func(*UserOperation){
		func(op *UserOperation) { op.Nonce = big.NewInt(1) },
		func(op *UserOperation) { op.CallData = []byte{0x02} },
		func(op *UserOperation) { op.InitCode = []byte{0x02} },
		func(op *UserOperation) { op.MaxFeePerGas = big.NewInt(2) },
		func(op *UserOperation) { op.PaymasterAndData = []byte{0x02} },
	} {
		cpy := op.Copy()
		mutate(cpy)
		other, err := cpy.Hash(testEntryPoint, big.NewInt(1))
		require.NoError(t, err)
		require.NotEqual(t, hash, other)
	}

	other, err := op.Hash(common.HexToAddress("0x01"), big.NewInt(1))
	require.NoError(t, err)
	require.NotEqual(t, hash, other)
	other, err = op.Hash(testEntryPoint, big.NewInt(2))
	require.NoError(t, err)
	require.NotEqual(t, hash, other)
}

func TestUserOperationPrefund(t *testing.T) {
	t.Parallel()
	op := testUserOperation()
	require.Equal(t, new(big.Int).Mul(big.NewInt(221_000), big.NewInt(1_000_000_000)), op.RequiredPrefund())
	require.Zero(t, (&UserOperation{}).RequiredPrefund().Sign())

	_, ok := op.Paymaster()
	require.False(t, ok)
	op.PaymasterAndData = append(common.HexToAddress("0x9a9a").Bytes(), 0xff)
	paymaster, ok := op.Paymaster()
	require.True(t, ok)
	require.Equal(t, common.HexToAddress("0x9a9a"), paymaster)
}

func TestUserOperationCopy(t *testing.T) {
	t.Parallel()
	op := testUserOperation()
	cpy := op.Copy()
	cpy.Nonce.SetInt64(9)
	cpy.CallData[0] = 0xff
	require.Zero(t, op.Nonce.Sign())
	require.Equal(t, []byte{0x01}, op.CallData)
}

func TestUserOperationJSON(t *testing.T) {
	t.Parallel()
	var op UserOperation
	err := json.Unmarshal([]byte(`{
		"sender": "0x000000000000000000000000000000000000acc0",
		"nonce": "0x10",
		"callData": "0x0102",
		"maxFeePerGas": "0x3b9aca00"
	}`), &op)
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress("0xacc0"), op.Sender)
	require.Equal(t, big.NewInt(16), op.Nonce)
	require.Equal(t, []byte{1, 2}, op.CallData)
	require.Equal(t, big.NewInt(1_000_000_000), op.MaxFeePerGas)
	require.Nil(t, op.CallGasLimit)

	enc, err := json.Marshal(op)
	require.NoError(t, err)
	require.Contains(t, string(enc), `"callGasLimit":"0x0"`)

	require.Error(t, json.Unmarshal([]byte(`{"nonce":"0x1"}`), &op))
}
