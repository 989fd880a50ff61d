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
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Results returned by an account's user operation validation.
const (
	SigValidationSucceeded = 0
	SigValidationFailed    = 1
)

var (
	maxUint48  = new(big.Int).SetUint64(1<<48 - 1)
	maxUint160 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 160), big.NewInt(1))
)

// ValidationData is the unpacked form of the uint256 returned by
// validateUserOp:
//
//	bits   0..159  aggregator, 0 for success and 1 for signature failure
//	bits 160..207  validUntil, 0 meaning no expiry
//	bits 208..255  validAfter
type ValidationData struct {
	Aggregator common.Address
	ValidUntil uint64
	ValidAfter uint64
}

// SigFailed reports whether the account flagged a signature mismatch.
func (v ValidationData) SigFailed() bool {
	return v.Aggregator == common.BigToAddress(big.NewInt(SigValidationFailed))
}

// InTimeRange reports whether now lies inside the validity window.
func (v ValidationData) InTimeRange(now uint64) bool {
	if now < v.ValidAfter {
		return false
	}
	return v.ValidUntil == 0 || now <= v.ValidUntil
}

// ParseValidationData unpacks the raw validation word.
func ParseValidationData(data *big.Int) ValidationData {
	if data == nil {
		return ValidationData{}
	}
	aggregator := new(big.Int).And(data, maxUint160)
	validUntil := new(big.Int).And(new(big.Int).Rsh(data, 160), maxUint48)
	validAfter := new(big.Int).And(new(big.Int).Rsh(data, 160+48), maxUint48)
	return ValidationData{
		Aggregator: common.BigToAddress(aggregator),
		ValidUntil: validUntil.Uint64(),
		ValidAfter: validAfter.Uint64(),
	}
}

// Pack encodes the validation data back into its uint256 word.
func (v ValidationData) Pack() *big.Int {
	word := new(big.Int).SetBytes(v.Aggregator.Bytes())
	word.Or(word, new(big.Int).Lsh(new(big.Int).SetUint64(v.ValidUntil&(1<<48-1)), 160))
	return word.Or(word, new(big.Int).Lsh(new(big.Int).SetUint64(v.ValidAfter&(1<<48-1)), 160+48))
}

// SigValidation returns the plain success or failure word without a time range.
func SigValidation(ok bool) *big.Int {
	if ok {
		return big.NewInt(SigValidationSucceeded)
	}
	return big.NewInt(SigValidationFailed)
}
