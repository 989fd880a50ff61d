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
	"errors"
	"testing"

	"github.com/bsi-ethereum/go-aa/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

var (
	alice    = common.HexToAddress("0xa11ce")
	bob      = common.HexToAddress("0xb0b")
	contract = common.HexToAddress("0xc0de")
	slot     = SlotIndex(0)
)

func newTestHost(t *testing.T) *Host {
	t.Helper()
	h, err := NewMemory(Config{ChainID: params.DevChainID, BlockNumber: 7, Time: 100})
	require.NoError(t, err)
	return h
}

// writer stores a marker and fails when the input asks it to.
func writer(frame *Frame, input []byte) ([]byte, error) {
	frame.Host.SetState(frame.Self, slot, common.HexToHash("0x01"))
	frame.Host.EmitLog(frame.Self, []common.Hash{common.HexToHash("0x1091")}, nil)
	if len(input) > 0 && input[0] == 0xff {
		return nil, errors.New("asked to fail")
	}
	return []byte{0x2a}, nil
}

func TestCall(t *testing.T) {
	t.Parallel()
	h := newTestHost(t)
	require.NoError(t, h.Deploy(contract, ContractFunc(writer)))
	h.AddBalance(alice, uint256.NewInt(100))

	ret, err := h.Call(alice, contract, uint256.NewInt(40), nil)
	require.NoError(t, err)
	require.Equal(t, []byte{0x2a}, ret)
	require.Equal(t, uint64(60), h.GetBalance(alice).Uint64())
	require.Equal(t, uint64(40), h.GetBalance(contract).Uint64())
	require.Equal(t, common.HexToHash("0x01"), h.GetState(contract, slot))

	// Plain addresses just receive the value.
	ret, err = h.Call(alice, bob, uint256.NewInt(10), []byte{0x01})
	require.NoError(t, err)
	require.Nil(t, ret)
	require.Equal(t, uint64(10), h.GetBalance(bob).Uint64())

	_, err = h.Call(alice, bob, uint256.NewInt(51), nil)
	require.ErrorIs(t, err, vm.ErrInsufficientBalance)
}

func TestCallRevert(t *testing.T) {
	t.Parallel()
	h := newTestHost(t)
	require.NoError(t, h.Deploy(contract, ContractFunc(writer)))
	h.AddBalance(alice, uint256.NewInt(100))
	txHash := common.HexToHash("0x01")
	h.BeginTx(txHash)

	_, err := h.Call(alice, contract, uint256.NewInt(40), []byte{0xff})
	require.ErrorIs(t, err, vm.ErrExecutionReverted)

	var revert *RevertError
	require.ErrorAs(t, err, &revert)
	require.Equal(t, "asked to fail", revert.Reason())
	require.Equal(t, PackRevertReason("asked to fail"), revert.RevertData())
	require.Equal(t, revert.RevertData(), RevertData(err))

	require.Equal(t, uint64(100), h.GetBalance(alice).Uint64())
	require.Equal(t, common.Hash{}, h.GetState(contract, slot))
	require.Empty(t, h.Logs(txHash))
}

type customError struct{}

func (customError) Error() string      { return "custom" }
func (customError) RevertData() []byte { return []byte{0xde, 0xad} }

func TestRevertData(t *testing.T) {
	t.Parallel()
	require.Nil(t, RevertData(nil))
	require.Equal(t, []byte{0xde, 0xad}, RevertData(customError{}))
	require.Equal(t, PackRevertReason("plain"), RevertData(errors.New("plain")))

	revert := NewRevertError([]byte{0xde, 0xad})
	require.Empty(t, revert.Reason())
	require.Contains(t, revert.Error(), "0xdead")
	require.Equal(t, vm.ErrExecutionReverted.Error(), NewRevertError(nil).Error())
}

func TestSystemCall(t *testing.T) {
	t.Parallel()
	h := newTestHost(t)
	var frames []Frame
	require.NoError(t, h.Deploy(contract, ContractFunc(func(frame *Frame, _ []byte) ([]byte, error) {
		frames = append(frames, *frame)
		return nil, nil
	})))

	_, err := h.Call(alice, contract, nil, nil)
	require.NoError(t, err)
	_, err = h.SystemCall(alice, contract, nil, nil)
	require.NoError(t, err)

	require.Len(t, frames, 2)
	require.False(t, frames[0].System)
	require.True(t, frames[1].System)
	require.Equal(t, alice, frames[1].Caller)
	require.Equal(t, contract, frames[1].Self)
	require.Equal(t, 1, frames[1].Depth)
}

func TestStaticCall(t *testing.T) {
	t.Parallel()
	h := newTestHost(t)
	require.NoError(t, h.Deploy(contract, ContractFunc(writer)))

	ret, err := h.StaticCall(alice, contract, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{0x2a}, ret)
	require.Equal(t, common.Hash{}, h.GetState(contract, slot))
}

func TestCallDepth(t *testing.T) {
	t.Parallel()
	h := newTestHost(t)
	deepest := 0
	require.NoError(t, h.Deploy(contract, ContractFunc(func(frame *Frame, input []byte) ([]byte, error) {
		deepest = max(deepest, frame.Depth)
		return frame.Host.Call(frame.Self, frame.Self, nil, input)
	})))

	_, err := h.Call(alice, contract, nil, nil)
	var revert *RevertError
	require.ErrorAs(t, err, &revert)
	require.Equal(t, vm.ErrDepth.Error(), revert.Reason())
	require.Equal(t, params.CallDepthLimit+1, deepest)
}

func TestAtomic(t *testing.T) {
	t.Parallel()
	h := newTestHost(t)
	h.AddBalance(alice, uint256.NewInt(10))
	failure := errors.New("failure")

	err := h.Atomic(func() error {
		require.NoError(t, h.Transfer(alice, bob, uint256.NewInt(5)))
		require.NoError(t, h.Deploy(contract, ContractFunc(writer)))
		return failure
	})
	require.ErrorIs(t, err, failure)
	require.Equal(t, uint64(10), h.GetBalance(alice).Uint64())
	require.False(t, h.IsContract(contract))

	require.NoError(t, h.Atomic(func() error {
		return h.Deploy(contract, ContractFunc(writer))
	}))
	require.True(t, h.IsContract(contract))
	require.ErrorIs(t, h.Deploy(contract, ContractFunc(writer)), ErrContractExists)
}

func TestInstantiate(t *testing.T) {
	t.Parallel()
	h := newTestHost(t)
	codeHash := CodeHash("test.Writer")
	require.Equal(t, crypto.Keccak256Hash([]byte("test.Writer")), codeHash)

	require.ErrorIs(t, h.Instantiate(codeHash, contract, nil), ErrUnknownCode)

	var gotInput []byte
	h.RegisterCode(codeHash, func(_ *Host, _ common.Address, input []byte) (Contract, error) {
		gotInput = input
		return ContractFunc(writer), nil
	})
	require.NoError(t, h.Instantiate(codeHash, contract, []byte{0x07}))
	require.Equal(t, []byte{0x07}, gotInput)
	_, ok := h.ContractAt(contract)
	require.True(t, ok)
	require.ErrorIs(t, h.Instantiate(codeHash, contract, nil), ErrContractExists)
}

func TestLogs(t *testing.T) {
	t.Parallel()
	h := newTestHost(t)
	require.NoError(t, h.Deploy(contract, ContractFunc(writer)))

	first, second := common.HexToHash("0x01"), common.HexToHash("0x02")
	h.BeginTx(first)
	_, err := h.Call(alice, contract, nil, nil)
	require.NoError(t, err)
	h.BeginTx(second)
	require.Equal(t, second, h.CurrentTx())
	_, err = h.Call(alice, contract, nil, nil)
	require.NoError(t, err)
	_, err = h.Call(alice, contract, nil, []byte{0xff})
	require.Error(t, err)

	for _, hash := range []common.Hash{first, second} {
		logs := h.Logs(hash)
		require.Len(t, logs, 1)
		require.Equal(t, contract, logs[0].Address)
		require.Equal(t, hash, logs[0].TxHash)
		require.Equal(t, uint64(7), logs[0].BlockNumber)
	}
}

func TestStorageHelpers(t *testing.T) {
	t.Parallel()
	require.Equal(t, common.BigToHash(common.Big2), SlotIndex(2))

	key := AddressKey(alice)
	require.Equal(t, common.BytesToHash(alice.Bytes()), key)
	require.Equal(t, crypto.Keccak256Hash(key[:], SlotIndex(1).Bytes()), MappingSlot(key, SlotIndex(1)))

	h := newTestHost(t)
	require.Zero(t, h.GetStateBig(contract, slot).Sign())
	h.SetStateBig(contract, slot, common.Big3)
	require.Equal(t, common.Big3, h.GetStateBig(contract, slot))
	require.Equal(t, common.BigToHash(common.Big3), h.GetState(contract, slot))
}
