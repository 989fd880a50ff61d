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

package zksync_test

import (
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/bsi-ethereum/go-aa/accounts"
	"github.com/bsi-ethereum/go-aa/accounts/abi"
	"github.com/bsi-ethereum/go-aa/accounts/system"
	"github.com/bsi-ethereum/go-aa/contracts/zksync"
	"github.com/bsi-ethereum/go-aa/core/host"
	"github.com/bsi-ethereum/go-aa/core/types"
	"github.com/bsi-ethereum/go-aa/internal/aatest"
	"github.com/bsi-ethereum/go-aa/params"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

var accountAddress = common.HexToAddress("0x000000000000000000000000000000000000a11c")

func setup(t *testing.T) (*aatest.Env, *system.Account, *ecdsa.PrivateKey) {
	t.Helper()
	env := aatest.NewEnv(t)
	key, owner := aatest.NewKey(t)
	acc, err := system.Deploy(env.Host, accountAddress, owner)
	require.NoError(t, err)
	env.Fund(accountAddress, aatest.Ether(1))
	return env, acc, key
}

func mintTx(t *testing.T, key *ecdsa.PrivateKey, nonce uint64, amount int64) *types.Transaction {
	t.Helper()
	mint, err := abi.TokenABI.Pack("mint", accountAddress, big.NewInt(amount))
	require.NoError(t, err)
	tx := types.NewTransaction(accountAddress, aatest.TokenAddress, nonce, nil, mint)
	tx.GasLimit = big.NewInt(100_000)
	tx.MaxFeePerGas = big.NewInt(params.GWei)
	require.NoError(t, system.SignTransaction(tx, params.DevChainID, key))
	return tx
}

func minNonce(t *testing.T, env *aatest.Env) uint64 {
	t.Helper()
	nonce, err := env.NonceHolder.GetMinNonce(accountAddress)
	require.NoError(t, err)
	return nonce.Uint64()
}

func TestProcessTransaction(t *testing.T) {
	t.Parallel()
	env, _, key := setup(t)

	tx := mintTx(t, key, 0, 42)
	receipt, err := env.Bootloader.ProcessTransaction(tx)
	require.NoError(t, err)
	require.Equal(t, gethtypes.ReceiptStatusSuccessful, receipt.Status)
	require.Equal(t, tx.Fee(), receipt.Fee)
	require.Equal(t, tx.Fee(), env.Balance(params.BootloaderAddress))
	require.Equal(t, big.NewInt(42), env.Token.BalanceOf(accountAddress))
	require.Equal(t, uint64(1), minNonce(t, env))

	hash, err := tx.Hash(params.DevChainID)
	require.NoError(t, err)
	require.Equal(t, hash, receipt.TxHash)
	require.NotEmpty(t, receipt.Logs)
	require.Equal(t, aatest.TokenAddress, receipt.Logs[len(receipt.Logs)-1].Address)
}

func TestProcessTransactionExecutionFailure(t *testing.T) {
	t.Parallel()
	env, _, key := setup(t)

	transfer, err := abi.TokenABI.Pack("transfer", common.HexToAddress("0x0202"), big.NewInt(1))
	require.NoError(t, err)
	tx := types.NewTransaction(accountAddress, aatest.TokenAddress, 0, nil, transfer)
	tx.GasLimit = big.NewInt(100_000)
	tx.MaxFeePerGas = big.NewInt(params.GWei)
	require.NoError(t, system.SignTransaction(tx, params.DevChainID, key))

	receipt, err := env.Bootloader.ProcessTransaction(tx)
	require.NoError(t, err)
	require.Equal(t, gethtypes.ReceiptStatusFailed, receipt.Status)
	require.NotEmpty(t, receipt.RevertReason)

	// Nonce and fee stay spent.
	require.Equal(t, uint64(1), minNonce(t, env))
	require.Equal(t, tx.Fee(), env.Balance(params.BootloaderAddress))

	// The callee's revert data surfaces unchanged.
	require.Equal(t, "ERC20: transfer amount exceeds balance", host.NewRevertError(receipt.RevertReason).Reason())
}

func TestProcessTransactionRejected(t *testing.T) {
	t.Parallel()
	env, _, key := setup(t)
	balance := env.Balance(accountAddress)

	other, _ := aatest.NewKey(t)
	_, err := env.Bootloader.ProcessTransaction(mintTx(t, other, 0, 1))
	require.ErrorIs(t, err, zksync.ErrNotApproved)

	_, err = env.Bootloader.ProcessTransaction(mintTx(t, key, 3, 1))
	require.ErrorIs(t, err, accounts.ErrNonceMismatch)

	tx := mintTx(t, key, 0, 1)
	tx.GasLimit = new(big.Int).Mul(big.NewInt(params.Ether), big.NewInt(100))
	require.NoError(t, system.SignTransaction(tx, params.DevChainID, key))
	_, err = env.Bootloader.ProcessTransaction(tx)
	require.ErrorIs(t, err, accounts.ErrInsufficientBalance)

	_, err = env.Bootloader.ProcessTransaction(types.NewTransaction(common.HexToAddress("0x0303"), aatest.TokenAddress, 0, nil, nil))
	require.ErrorIs(t, err, zksync.ErrNotAccount)

	// Rejections leave no trace.
	require.Zero(t, minNonce(t, env))
	require.Equal(t, balance, env.Balance(accountAddress))
	require.Zero(t, env.Balance(params.BootloaderAddress).Sign())
	require.Zero(t, env.Token.TotalSupply().Sign())
}

func TestProcessTransactionPaymaster(t *testing.T) {
	t.Parallel()
	env, _, key := setup(t)
	paymaster := common.HexToAddress("0x9a9a")

	tx := mintTx(t, key, 0, 5)
	tx.Paymaster = types.AddressToWord(paymaster)
	input, err := abi.PaymasterFlowABI.Pack("approvalBased", aatest.TokenAddress, big.NewInt(77), []byte{})
	require.NoError(t, err)
	tx.PaymasterInput = input
	require.NoError(t, system.SignTransaction(tx, params.DevChainID, key))

	receipt, err := env.Bootloader.ProcessTransaction(tx)
	require.NoError(t, err)
	require.Equal(t, gethtypes.ReceiptStatusSuccessful, receipt.Status)
	require.Zero(t, receipt.Fee.Sign())
	require.Equal(t, big.NewInt(77), env.Token.Allowance(accountAddress, paymaster))
	require.Equal(t, aatest.Ether(1), env.Balance(accountAddress))
}
