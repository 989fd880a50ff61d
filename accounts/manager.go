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
	"sort"
	"sync"

	"github.com/bsi-ethereum/go-aa/core/host"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/log"
)

// Manager is a registry of the smart accounts deployed on a host. It keeps the
// accounts sorted by URL and notifies subscribers of deployments and of
// ownership changes committed by processed transactions.
// Manager 是宿主上已部署智能账户的注册表。它按 URL 保持账户有序，并将已提交交易中的部署和所有权变更通知订阅者。
type Manager struct {
	accounts []SmartAccount
	index    mapset.Set[common.Address]
	resolve  func(common.Address) (SmartAccount, bool)

	feed event.Feed
	lock sync.RWMutex
}

// NewManager creates an account registry seeded with the given accounts.
// NewManager 创建一个以给定账户为初始内容的账户注册表。
func NewManager(accounts ...SmartAccount) *Manager {
	am := &Manager{index: mapset.NewThreadUnsafeSet[common.Address]()}
	for _, acc := range accounts {
		if am.index.Add(acc.Account().Address) {
			am.accounts = append(am.accounts, acc)
		}
	}
	sort.Sort(SmartAccountsByURL(am.accounts))
	return am
}

// Add registers a freshly deployed account and fires an AccountDeployed event.
// Add 注册新部署的账户并触发 AccountDeployed 事件。
func (am *Manager) Add(acc SmartAccount) error {
	am.lock.Lock()
	if !am.index.Add(acc.Account().Address) {
		am.lock.Unlock()
		return ErrAccountExists
	}
	am.accounts = merge(am.accounts, acc)
	am.lock.Unlock()

	log.Debug("Smart account registered", "url", acc.Account().URL, "owner", acc.Owner())
	am.feed.Send(AccountEvent{Account: acc, Kind: AccountDeployed, NewOwner: acc.Owner()})
	return nil
}

// Get retrieves the account deployed at addr.
// Get 获取部署在 addr 上的账户。
func (am *Manager) Get(addr common.Address) (SmartAccount, error) {
	am.lock.RLock()
	defer am.lock.RUnlock()

	return am.getNoLock(addr)
}

func (am *Manager) getNoLock(addr common.Address) (SmartAccount, error) {
	if !am.index.Contains(addr) {
		return nil, ErrUnknownAccount
	}
	for _, acc := range am.accounts {
		if acc.Account().Address == addr {
			return acc, nil
		}
	}
	return nil, ErrUnknownAccount
}

// Contains reports whether an account is registered at addr.
// Contains 报告 addr 上是否注册了账户。
func (am *Manager) Contains(addr common.Address) bool {
	am.lock.RLock()
	defer am.lock.RUnlock()

	return am.index.Contains(addr)
}

// Find retrieves the account associated with a particular URL.
// Find 获取与特定 URL 关联的账户。
func (am *Manager) Find(url string) (SmartAccount, error) {
	parsed, err := ParseURL(url)
	if err != nil {
		return nil, err
	}
	am.lock.RLock()
	defer am.lock.RUnlock()

	n := sort.Search(len(am.accounts), func(i int) bool { return am.accounts[i].Account().URL.Cmp(parsed) >= 0 })
	if n < len(am.accounts) && am.accounts[n].Account().URL == parsed {
		return am.accounts[n], nil
	}
	return nil, ErrUnknownAccount
}

// Accounts returns the descriptors of all registered accounts, sorted by URL.
// Accounts 返回所有已注册账户的描述符，按 URL 排序。
func (am *Manager) Accounts() []Account {
	am.lock.RLock()
	defer am.lock.RUnlock()

	accounts := make([]Account, len(am.accounts))
	for i, acc := range am.accounts {
		accounts[i] = acc.Account()
	}
	return accounts
}

// Track lets Sync register accounts that processed transactions deployed on h.
// Track 让 Sync 注册已处理交易在 h 上部署的账户。
func (am *Manager) Track(h *host.Host) {
	am.lock.Lock()
	defer am.lock.Unlock()

	am.resolve = func(addr common.Address) (SmartAccount, bool) {
		contract, ok := h.ContractAt(addr)
		if !ok {
			return nil, false
		}
		acc, ok := contract.(SmartAccount)
		return acc, ok
	}
}

// Sync scans the logs of a processed transaction for ownership transfers and
// fires an event for each. A first owner being set on an unknown, tracked
// account registers it as deployed. Only committed logs reach this point, so
// changes undone by a revert are never announced. It returns the number of
// events fired.
// Sync 扫描已处理交易的日志中的所有权转移并逐一触发事件。被回滚的变更永远不会被通知。返回触发的事件数量。
func (am *Manager) Sync(logs []*types.Log) int {
	var events []AccountEvent

	am.lock.Lock()
	for _, l := range logs {
		if len(l.Topics) != 3 || l.Topics[0] != ownershipTransferredTopic {
			continue
		}
		var (
			previous = common.BytesToAddress(l.Topics[1].Bytes())
			owner    = common.BytesToAddress(l.Topics[2].Bytes())
		)
		acc, err := am.getNoLock(l.Address)
		switch {
		case err == nil && previous == (common.Address{}):
			// Initialization of an account registered up front.
			continue
		case err == nil:
			events = append(events, AccountEvent{Account: acc, Kind: OwnershipTransferred, PreviousOwner: previous, NewOwner: owner})
		case previous == (common.Address{}) && am.resolve != nil:
			if acc, ok := am.resolve(l.Address); ok && am.index.Add(l.Address) {
				am.accounts = merge(am.accounts, acc)
				events = append(events, AccountEvent{Account: acc, Kind: AccountDeployed, NewOwner: owner})
			}
		}
	}
	am.lock.Unlock()

	for _, ev := range events {
		am.feed.Send(ev)
	}
	return len(events)
}

// Subscribe creates an async subscription to receive notifications about
// account deployments and ownership changes.
// Subscribe 创建一个异步订阅，以接收账户部署和所有权变更的通知。
func (am *Manager) Subscribe(sink chan<- AccountEvent) event.Subscription {
	return am.feed.Subscribe(sink)
}

// merge is a sorted analogue of append for accounts, where the ordering of the
// origin list is preserved by inserting new accounts at the correct position.
//
// The original slice is assumed to be already sorted by URL.
// merge 是账户的有序版 append，通过在正确位置插入新账户来保持原列表的顺序。
func merge(slice []SmartAccount, accounts ...SmartAccount) []SmartAccount {
	for _, acc := range accounts {
		url := acc.Account().URL
		n := sort.Search(len(slice), func(i int) bool { return slice[i].Account().URL.Cmp(url) >= 0 })
		if n == len(slice) {
			slice = append(slice, acc)
			continue
		}
		slice = append(slice[:n], append([]SmartAccount{acc}, slice[n:]...)...)
	}
	return slice
}
