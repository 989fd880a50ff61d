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

// 版权所有 2026 The go-aa Authors
// 此文件是 go-aa 库的一部分。
//
// go-aa 库是免费软件：您可以根据自由软件基金会发布的 GNU 宽通用公共许可证的条款重新分发和/或修改它，
// 可以是许可证的第 3 版，也可以是（由您选择）任何更高版本。
//
// go-aa 库的发布是希望它能有用，但没有任何保证；甚至没有对适销性或特定用途适用性的默示保证。
// 有关更多详细信息，请参阅 GNU 宽通用公共许可证。
//
// 您应该已经随 go-aa 库收到一份 GNU 宽通用公共许可证的副本。如果没有，请参阅 <http://www.gnu.org/licenses/>。

package accounts

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var errMissingScheme = errors.New("protocol scheme missing")

// URL locates a smart account as kind://chainID/address. Two URLs of the same
// account are always equal: the address is kept in checksummed form.
// URL 以 kind://chainID/address 的形式定位智能账户。同一账户的两个 URL 总是相等：地址保持校验和形式。
type URL struct {
	Scheme string // account kind
	Path   string // decimal chain ID and account address
}

// ParseURL validates a user supplied account URL and brings it into canonical
// form.
// ParseURL 校验用户提供的账户 URL 并将其转换为规范形式。
func ParseURL(url string) (URL, error) {
	scheme, path, ok := strings.Cut(url, "://")
	if !ok || scheme == "" {
		return URL{}, errMissingScheme
	}
	kind := Kind(scheme)
	if kind != KindStandard && kind != KindSystem {
		return URL{}, fmt.Errorf("unknown account kind %q", scheme)
	}
	chain, addr, ok := strings.Cut(path, "/")
	if !ok {
		return URL{}, fmt.Errorf("account path %q is not chainID/address", path)
	}
	chainID, ok := new(big.Int).SetString(chain, 10)
	if !ok || chainID.Sign() <= 0 {
		return URL{}, fmt.Errorf("invalid chain ID %q", chain)
	}
	if !common.IsHexAddress(addr) {
		return URL{}, fmt.Errorf("invalid account address %q", addr)
	}
	return NewAccount(kind, chainID, common.HexToAddress(addr)).URL, nil
}

// Kind returns the account kind named by the scheme.
// Kind 返回 scheme 所指的账户类型。
func (u URL) Kind() Kind { return Kind(u.Scheme) }

// String implements the stringer interface.
// String 实现 stringer 接口。
func (u URL) String() string {
	if u.Scheme != "" {
		return u.Scheme + "://" + u.Path
	}
	return u.Path
}

// TerminalString implements the log.TerminalStringer interface, shortening
// the address.
// TerminalString 实现 log.TerminalStringer 接口，缩短地址显示。
func (u URL) TerminalString() string {
	chain, addr, ok := strings.Cut(u.Path, "/")
	if !ok || len(addr) != 2*common.AddressLength+2 {
		return u.String()
	}
	return fmt.Sprintf("%s://%s/%s..%s", u.Scheme, chain, addr[:6], addr[len(addr)-4:])
}

// MarshalJSON implements the json.Marshaller interface.
// MarshalJSON 实现 json.Marshaller 接口。
func (u URL) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

// UnmarshalJSON parses url.
// UnmarshalJSON 解析 url。
func (u *URL) UnmarshalJSON(input []byte) error {
	var text string
	if err := json.Unmarshal(input, &text); err != nil {
		return err
	}
	url, err := ParseURL(text)
	if err != nil {
		return err
	}
	*u = url
	return nil
}

// Cmp orders URLs by kind, then by chain and address.
// Cmp 先按类型、再按链和地址对 URL 排序。
func (u URL) Cmp(url URL) int {
	if c := strings.Compare(u.Scheme, url.Scheme); c != 0 {
		return c
	}
	return strings.Compare(u.Path, url.Path)
}
