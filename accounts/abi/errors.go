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
	"github.com/ethereum/go-ethereum/common"
)

// PackError encodes the custom error name with its arguments as revert data.
// Unknown names and malformed arguments yield nil.
func PackError(name string, args ...interface{}) []byte {
	e, ok := ErrorsABI.Errors[name]
	if !ok {
		return nil
	}
	enc, err := e.Inputs.Pack(args...)
	if err != nil {
		return nil
	}
	return append(common.CopyBytes(e.ID[:4]), enc...)
}

// UnpackError identifies the custom error carried by revert data. It reports
// false for data that isn't one of the known account errors.
func UnpackError(data []byte) (string, []interface{}, bool) {
	if len(data) < 4 {
		return "", nil, false
	}
	var id [4]byte
	copy(id[:], data[:4])
	e, err := ErrorsABI.ErrorByID(id)
	if err != nil {
		return "", nil, false
	}
	args, err := e.Inputs.Unpack(data[4:])
	if err != nil {
		return "", nil, false
	}
	return e.Name, args, true
}
