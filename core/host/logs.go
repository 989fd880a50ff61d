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
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	revertSelector = crypto.Keccak256([]byte("Error(string)"))[:4]
	stringT, _     = abi.NewType("string", "", nil)
	reasonArgs     = abi.Arguments{{Type: stringT}}
)

// PackRevertReason encodes reason as Error(string) revert data.
func PackRevertReason(reason string) []byte {
	enc, err := reasonArgs.Pack(reason)
	if err != nil {
		return nil
	}
	return append(common.CopyBytes(revertSelector), enc...)
}

func unpackRevert(data []byte) (string, error) {
	return abi.UnpackRevert(data)
}

// BeginTx starts attributing emitted logs to a new transaction.
func (h *Host) BeginTx(hash common.Hash) {
	h.txHash = hash
	h.state.SetTxContext(hash, h.txIndex)
	h.txIndex++
}

// EmitLog records a log on behalf of addr. Logs are journaled and vanish with
// the call that emitted them if it reverts.
func (h *Host) EmitLog(addr common.Address, topics []common.Hash, data []byte) {
	h.state.AddLog(&types.Log{
		Address:     addr,
		Topics:      topics,
		Data:        common.CopyBytes(data),
		BlockNumber: h.config.BlockNumber,
	})
}

// Logs returns the logs emitted while processing the given transaction.
func (h *Host) Logs(hash common.Hash) []*types.Log {
	return h.state.GetLogs(hash, h.config.BlockNumber, common.Hash{}, h.config.Time)
}

// CurrentTx returns the transaction logs are currently attributed to.
func (h *Host) CurrentTx() common.Hash { return h.txHash }
