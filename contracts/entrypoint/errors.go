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
	"errors"
	"fmt"
	"math/big"

	"github.com/bsi-ethereum/go-aa/accounts/abi"
)

// ErrFailedOp is returned when an operation of a bundle fails validation.
var ErrFailedOp = errors.New("user operation failed")

var (
	errWithdrawTooLarge  = errors.New("withdraw amount too large")
	errWithdrawFailed    = errors.New("failed to withdraw")
	errBeneficiaryFailed = errors.New("AA91 failed send to beneficiary")
)

// FailedOpError aborts a whole bundle because one of its operations could not
// be validated. Reason starts with the AAxx code of the failed check.
type FailedOpError struct {
	OpIndex int
	Reason  string
}

// Error implements the standard error interface.
func (err *FailedOpError) Error() string {
	return fmt.Sprintf("FailedOp(%d, %q)", err.OpIndex, err.Reason)
}

// Unwrap returns ErrFailedOp.
func (err *FailedOpError) Unwrap() error { return ErrFailedOp }

// RevertData encodes FailedOp(uint256,string).
func (err *FailedOpError) RevertData() []byte {
	return abi.PackError("FailedOp", big.NewInt(int64(err.OpIndex)), err.Reason)
}

// ParseFailedOp decodes FailedOp revert data.
func ParseFailedOp(data []byte) (*FailedOpError, bool) {
	name, args, ok := abi.UnpackError(data)
	if !ok || name != "FailedOp" {
		return nil, false
	}
	return &FailedOpError{OpIndex: int(args[0].(*big.Int).Int64()), Reason: args[1].(string)}, true
}

func failedOp(index int, reason string) error {
	return &FailedOpError{OpIndex: index, Reason: reason}
}
