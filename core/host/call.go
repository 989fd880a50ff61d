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
	"fmt"

	"github.com/bsi-ethereum/go-aa/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/holiman/uint256"
)

// Call executes a plain call from caller to to, transferring value first. Calls
// to addresses without bound code succeed after the transfer. On failure every
// state change made by the call is reverted and the returned error carries the
// callee's revert data.
func (h *Host) Call(caller, to common.Address, value *uint256.Int, input []byte) ([]byte, error) {
	return h.call(caller, to, value, input, false)
}

// SystemCall is Call with the system flag raised, which the reserved system
// contracts require before they act.
func (h *Host) SystemCall(caller, to common.Address, value *uint256.Int, input []byte) ([]byte, error) {
	return h.call(caller, to, value, input, true)
}

// StaticCall runs a read-only query and discards any state change it made.
func (h *Host) StaticCall(caller, to common.Address, input []byte) ([]byte, error) {
	snapshot, bound := h.state.Snapshot(), len(h.bound)
	defer h.revert(snapshot, bound)
	return h.call(caller, to, nil, input, false)
}

func (h *Host) call(caller, to common.Address, value *uint256.Int, input []byte, system bool) ([]byte, error) {
	if h.depth > params.CallDepthLimit {
		return nil, vm.ErrDepth
	}
	if value == nil {
		value = new(uint256.Int)
	}
	snapshot, bound := h.state.Snapshot(), len(h.bound)
	if err := h.Transfer(caller, to, value); err != nil {
		return nil, err
	}
	contract, ok := h.contracts[to]
	if !ok {
		return nil, nil
	}
	h.depth++
	frame := &Frame{
		Host:   h,
		Caller: caller,
		Self:   to,
		Value:  new(uint256.Int).Set(value),
		System: system,
		Depth:  h.depth,
	}
	ret, err := contract.Run(frame, input)
	h.depth--
	if err != nil {
		h.revert(snapshot, bound)
		revert := NewRevertError(RevertData(err))
		h.logger.Trace("Call reverted", "from", caller, "to", to, "system", system, "depth", frame.Depth, "err", err)
		return nil, revert
	}
	return ret, nil
}

// RevertError is the failure of a call, carrying the revert payload verbatim.
type RevertError struct {
	data   []byte
	reason string
}

// NewRevertError wraps raw revert data, decoding a standard Error(string)
// reason when present.
func NewRevertError(data []byte) *RevertError {
	reason, errUnpack := unpackRevert(data)
	if errUnpack != nil {
		reason = ""
	}
	return &RevertError{data: data, reason: reason}
}

// Error implements error.
func (e *RevertError) Error() string {
	if e.reason != "" {
		return fmt.Sprintf("%v: %s", vm.ErrExecutionReverted, e.reason)
	}
	if len(e.data) > 0 {
		return fmt.Sprintf("%v: data %#x", vm.ErrExecutionReverted, e.data)
	}
	return vm.ErrExecutionReverted.Error()
}

// Unwrap makes RevertError match vm.ErrExecutionReverted.
func (e *RevertError) Unwrap() error { return vm.ErrExecutionReverted }

// RevertData returns the raw revert payload.
func (e *RevertError) RevertData() []byte { return e.data }

// Reason returns the decoded Error(string) reason, if any.
func (e *RevertError) Reason() string { return e.reason }

// Reverter is implemented by errors that define their own revert payload.
type Reverter interface {
	RevertData() []byte
}

// RevertData returns the revert payload a failing contract produces for err:
// the error's own payload when it defines one, Error(string) otherwise.
func RevertData(err error) []byte {
	if err == nil {
		return nil
	}
	var r Reverter
	if errors.As(err, &r) {
		return r.RevertData()
	}
	return PackRevertReason(err.Error())
}
