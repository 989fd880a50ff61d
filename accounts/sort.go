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

// SmartAccountsByURL implements sort.Interface for []SmartAccount based on the
// URL of their descriptors.
// SmartAccountsByURL 基于描述符的 URL 为 []SmartAccount 实现 sort.Interface。
type SmartAccountsByURL []SmartAccount

func (s SmartAccountsByURL) Len() int      { return len(s) }
func (s SmartAccountsByURL) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s SmartAccountsByURL) Less(i, j int) bool {
	return s[i].Account().URL.Cmp(s[j].Account().URL) < 0
}
