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

package system

import (
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/bsi-ethereum/go-aa/accounts"
	"github.com/bsi-ethereum/go-aa/accounts/abi"
	"github.com/bsi-ethereum/go-aa/core/types"
	"github.com/bsi-ethereum/go-aa/internal/aatest"
	"github.com/bsi-ethereum/go-aa/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

var accountAddress = common.HexToAddress("0x000000000000000000000000000000000000a11c")

type testAccount struct {
	env   *aatest.Env
	acc   *Account
	key   *ecdsa.PrivateKey
	owner common.Address
}

func newTestAccount(t *testing.T) *testAccount {
	t.Helper()
	env := aatest.NewEnv(t)
	Register(env.Host)
	key, owner := aatest.NewKey(t)
	acc, err := Deploy(env.Host, accountAddress, owner)
	require.NoError(t, err)
	env.Fund(acc.Address(), aatest.Ether(1))
	return &testAccount{env: env, acc: acc, key: key, owner: owner}
}

// tx builds a transaction from the account with a fee of 1e14 wei, signed by
// key.
func (ta *testAccount) tx(t *testing.T, key *ecdsa.PrivateKey, nonce uint64, to common.Address, value *big.Int, data []byte) *types.Transaction {
	t.Helper()
	tx := types.NewTransaction(ta.acc.Address(), to, nonce, value, data)
	tx.GasLimit = big.NewInt(100_000)
	tx.MaxFeePerGas = big.NewInt(params.GWei)
	tx.GasPerPubdataByteLimit = big.NewInt(800)
	require.NoError(t, SignTransaction(tx, params.DevChainID, key))
	return tx
}

func (ta *testAccount) minNonce(t *testing.T) uint64 {
	t.Helper()
	nonce, err := ta.env.NonceHolder.GetMinNonce(ta.acc.Address())
	require.NoError(t, err)
	return nonce.Uint64()
}

func TestValidateTransaction(t *testing.T) {
	t.Parallel()
	ta := newTestAccount(t)

	tx := ta.tx(t, ta.key, 0, aatest.TokenAddress, nil, nil)
	magic, err := ta.acc.ValidateTransaction(params.BootloaderAddress, common.Hash{}, common.Hash{}, tx)
	require.NoError(t, err)
	require.Equal(t, ValidationSuccessMagic, magic)
	require.Equal(t, uint64(1), ta.minNonce(t))

	// A foreign signature is a soft failure, and the nonce stays consumed.
	other, _ := aatest.NewKey(t)
	tx = ta.tx(t, other, 1, aatest.TokenAddress, nil, nil)
	magic, err = ta.acc.ValidateTransaction(params.BootloaderAddress, common.Hash{}, common.Hash{}, tx)
	require.NoError(t, err)
	require.Equal(t, [4]byte{}, magic)
	require.Equal(t, uint64(2), ta.minNonce(t))

	tx = ta.tx(t, ta.key, 2, aatest.TokenAddress, nil, nil)
	tx.Signature = append(tx.Signature, 0)
	_, err = ta.acc.ValidateTransaction(params.BootloaderAddress, common.Hash{}, common.Hash{}, tx)
	require.ErrorIs(t, err, accounts.ErrMalformedSignature)
}

func TestValidateTransactionNonceReplay(t *testing.T) {
	t.Parallel()
	ta := newTestAccount(t)

	tx := ta.tx(t, ta.key, 0, aatest.TokenAddress, nil, nil)
	_, err := ta.acc.ValidateTransaction(params.BootloaderAddress, common.Hash{}, common.Hash{}, tx)
	require.NoError(t, err)

	_, err = ta.acc.ValidateTransaction(params.BootloaderAddress, common.Hash{}, common.Hash{}, tx)
	var mismatch *accounts.NonceMismatchError
	require.ErrorAs(t, err, &mismatch)
	require.Zero(t, mismatch.Expected.Sign())
	require.Equal(t, big.NewInt(1), mismatch.Actual)
	require.Equal(t, uint64(1), ta.minNonce(t))

	tx = ta.tx(t, ta.key, 5, aatest.TokenAddress, nil, nil)
	_, err = ta.acc.ValidateTransaction(params.BootloaderAddress, common.Hash{}, common.Hash{}, tx)
	require.ErrorIs(t, err, accounts.ErrNonceMismatch)
}

func TestValidateTransactionFunds(t *testing.T) {
	t.Parallel()
	ta := newTestAccount(t)
	balance := ta.env.Balance(ta.acc.Address())
	fee := new(big.Int).Mul(big.NewInt(100_000), big.NewInt(params.GWei))

	// Exactly enough.
	value := new(big.Int).Sub(balance, fee)
	tx := ta.tx(t, ta.key, 0, common.HexToAddress("0x0101"), value, nil)
	require.Equal(t, balance, tx.TotalRequiredBalance())
	magic, err := ta.acc.ValidateTransaction(params.BootloaderAddress, common.Hash{}, common.Hash{}, tx)
	require.NoError(t, err)
	require.Equal(t, ValidationSuccessMagic, magic)

	// One wei short, checked through the host so the nonce rolls back.
	value.Add(value, common.Big1)
	tx = ta.tx(t, ta.key, 1, common.HexToAddress("0x0101"), value, nil)
	input, err := abi.PackTransactionCall("validateTransaction", common.Hash{}, common.Hash{}, tx)
	require.NoError(t, err)
	_, err = ta.env.Host.Call(params.BootloaderAddress, ta.acc.Address(), nil, input)

	var insufficient *accounts.InsufficientBalanceError
	require.ErrorAs(t, accounts.DecodeError(err), &insufficient)
	require.Equal(t, new(big.Int).Add(balance, common.Big1), insufficient.Required)
	require.Equal(t, balance, insufficient.Actual)
	require.Equal(t, uint64(1), ta.minNonce(t))

	// A paymaster covers the fee.
	tx = ta.tx(t, ta.key, 1, common.HexToAddress("0x0101"), new(big.Int).Set(balance), nil)
	tx.Paymaster = types.AddressToWord(common.HexToAddress("0x9a9a"))
	require.NoError(t, SignTransaction(tx, params.DevChainID, ta.key))
	magic, err = ta.acc.ValidateTransaction(params.BootloaderAddress, common.Hash{}, common.Hash{}, tx)
	require.NoError(t, err)
	require.Equal(t, ValidationSuccessMagic, magic)
}

func TestValidateTransactionSuggestedHash(t *testing.T) {
	t.Parallel()
	ta := newTestAccount(t)

	suggested := crypto.Keccak256Hash([]byte("suggested"))
	sig, err := accounts.SignHash(suggested, ta.key)
	require.NoError(t, err)

	tx := ta.tx(t, ta.key, 0, aatest.TokenAddress, nil, nil)
	tx.Signature = sig
	magic, err := ta.acc.ValidateTransaction(params.BootloaderAddress, common.Hash{}, suggested, tx)
	require.NoError(t, err)
	require.Equal(t, ValidationSuccessMagic, magic)

	// Without the suggestion the typed data hash applies.
	tx = ta.tx(t, ta.key, 1, aatest.TokenAddress, nil, nil)
	tx.Signature = sig
	magic, err = ta.acc.ValidateTransaction(params.BootloaderAddress, common.Hash{}, common.Hash{}, tx)
	require.NoError(t, err)
	require.Equal(t, [4]byte{}, magic)
}

func TestStrictEntryPoints(t *testing.T) {
	t.Parallel()
	ta := newTestAccount(t)
	tx := ta.tx(t, ta.key, 0, aatest.TokenAddress, nil, nil)

	for _, caller := range []common.Address{ta.owner, ta.acc.Address(), params.NonceHolderAddress} {
		_, err := ta.acc.ValidateTransaction(caller, common.Hash{}, common.Hash{}, tx)
		require.ErrorIs(t, err, accounts.ErrUnauthorizedCaller)
		require.ErrorIs(t, ta.acc.PayForTransaction(caller, common.Hash{}, common.Hash{}, tx), accounts.ErrUnauthorizedCaller)
		require.ErrorIs(t, ta.acc.PrepareForPaymaster(caller, common.Hash{}, common.Hash{}, tx), accounts.ErrUnauthorizedCaller)
	}
	require.Zero(t, ta.minNonce(t))

	// Execution admits the owner, so only strangers are turned away.
	for _, caller := range []common.Address{ta.acc.Address(), params.NonceHolderAddress} {
		require.ErrorIs(t, ta.acc.ExecuteTransaction(caller, common.Hash{}, common.Hash{}, tx), accounts.ErrUnauthorizedCaller)
	}
}

func TestExecute(t *testing.T) {
	t.Parallel()
	ta := newTestAccount(t)
	amount := big.NewInt(250)
	mint, err := abi.TokenABI.Pack("mint", ta.acc.Address(), amount)
	require.NoError(t, err)

	_, err = ta.acc.Execute(common.HexToAddress("0xbad"), aatest.TokenAddress, nil, mint)
	require.ErrorIs(t, err, accounts.ErrUnauthorizedCaller)

	_, err = ta.acc.Execute(ta.owner, aatest.TokenAddress, nil, mint)
	require.NoError(t, err)
	require.Equal(t, amount, ta.env.Token.BalanceOf(ta.acc.Address()))

	transfer, err := abi.TokenABI.Pack("transfer", ta.owner, big.NewInt(251))
	require.NoError(t, err)
	_, err = ta.acc.Execute(params.BootloaderAddress, aatest.TokenAddress, nil, transfer)
	var failed *accounts.ExecutionFailedError
	require.ErrorAs(t, err, &failed)
	require.Equal(t, "ERC20: transfer amount exceeds balance", failed.ReasonString())
	require.Equal(t, amount, ta.env.Token.BalanceOf(ta.acc.Address()))
}

func TestExecuteRoutesDeployerThroughSystemCall(t *testing.T) {
	t.Parallel()
	ta := newTestAccount(t)
	_, newOwner := aatest.NewKey(t)

	ctor, err := ConstructorInput(newOwner)
	require.NoError(t, err)
	salt := common.HexToHash("0x5a17")
	create2, err := abi.ContractDeployerABI.Pack("create2", [32]byte(salt), [32]byte(AccountCodeHash), ctor)
	require.NoError(t, err)

	// A plain call is refused by the deployer.
	_, err = ta.env.Host.Call(ta.acc.Address(), params.ContractDeployerAddress, nil, create2)
	require.ErrorIs(t, accounts.DecodeError(err), accounts.ErrSystemCallRequired)

	out, err := ta.acc.Execute(ta.owner, params.ContractDeployerAddress, nil, create2)
	require.NoError(t, err)
	deployed, err := abi.UnpackAddress(abi.ContractDeployerABI, "create2", out)
	require.NoError(t, err)

	want, err := Create2Address(ta.acc.Address(), salt, newOwner)
	require.NoError(t, err)
	require.Equal(t, want, deployed)
	contract, ok := ta.env.Host.ContractAt(deployed)
	require.True(t, ok)
	require.Equal(t, newOwner, contract.(*Account).Owner())

	// Deployer failures propagate like any other call failure.
	_, err = ta.acc.Execute(ta.owner, params.ContractDeployerAddress, nil, create2)
	var failed *accounts.ExecutionFailedError
	require.ErrorAs(t, err, &failed)
	require.Equal(t, params.ContractDeployerAddress, failed.Target)
	require.NotEmpty(t, failed.Reason)
}

func TestExecuteTransaction(t *testing.T) {
	t.Parallel()
	ta := newTestAccount(t)
	mint, err := abi.TokenABI.Pack("mint", ta.acc.Address(), big.NewInt(9))
	require.NoError(t, err)

	tx := ta.tx(t, ta.key, 0, aatest.TokenAddress, nil, mint)
	require.NoError(t, ta.acc.ExecuteTransaction(params.BootloaderAddress, common.Hash{}, common.Hash{}, tx))
	require.Equal(t, big.NewInt(9), ta.env.Token.BalanceOf(ta.acc.Address()))

	require.NoError(t, ta.acc.ExecuteTransaction(ta.owner, common.Hash{}, common.Hash{}, tx))
	require.Equal(t, big.NewInt(18), ta.env.Token.BalanceOf(ta.acc.Address()))

	err = ta.acc.ExecuteTransaction(common.HexToAddress("0xbad"), common.Hash{}, common.Hash{}, tx)
	require.ErrorIs(t, err, accounts.ErrUnauthorizedCaller)
	require.Equal(t, big.NewInt(18), ta.env.Token.BalanceOf(ta.acc.Address()))
}

func TestExecuteTransactionFromOutside(t *testing.T) {
	t.Parallel()
	ta := newTestAccount(t)
	relayer := common.HexToAddress("0x7e1a")
	mint, err := abi.TokenABI.Pack("mint", ta.acc.Address(), big.NewInt(4))
	require.NoError(t, err)

	other, _ := aatest.NewKey(t)
	tx := ta.tx(t, other, 0, aatest.TokenAddress, nil, mint)
	input, err := abi.PackExecuteTransactionFromOutside(tx)
	require.NoError(t, err)
	_, err = ta.env.Host.Call(relayer, ta.acc.Address(), nil, input)
	require.Error(t, err)
	require.Zero(t, ta.minNonce(t))
	require.Zero(t, ta.env.Token.BalanceOf(ta.acc.Address()).Sign())

	tx = ta.tx(t, ta.key, 0, aatest.TokenAddress, nil, mint)
	input, err = abi.PackExecuteTransactionFromOutside(tx)
	require.NoError(t, err)
	_, err = ta.env.Host.Call(relayer, ta.acc.Address(), nil, input)
	require.NoError(t, err)
	require.Equal(t, uint64(1), ta.minNonce(t))
	require.Equal(t, big.NewInt(4), ta.env.Token.BalanceOf(ta.acc.Address()))

	// Replays are caught by the nonce.
	_, err = ta.env.Host.Call(relayer, ta.acc.Address(), nil, input)
	require.ErrorIs(t, accounts.DecodeError(err), accounts.ErrNonceMismatch)
}

func TestPayForTransaction(t *testing.T) {
	t.Parallel()
	ta := newTestAccount(t)
	tx := ta.tx(t, ta.key, 0, aatest.TokenAddress, nil, nil)
	before := ta.env.Balance(ta.acc.Address())

	require.NoError(t, ta.acc.PayForTransaction(params.BootloaderAddress, common.Hash{}, common.Hash{}, tx))
	require.Equal(t, tx.Fee(), ta.env.Balance(params.BootloaderAddress))
	require.Equal(t, new(big.Int).Sub(before, tx.Fee()), ta.env.Balance(ta.acc.Address()))

	tx.GasLimit = new(big.Int).Mul(big.NewInt(params.Ether), big.NewInt(100))
	err := ta.acc.PayForTransaction(params.BootloaderAddress, common.Hash{}, common.Hash{}, tx)
	require.ErrorIs(t, err, accounts.ErrFailedToPayOperator)
}

func TestPrepareForPaymaster(t *testing.T) {
	t.Parallel()
	ta := newTestAccount(t)
	paymaster := common.HexToAddress("0x9a9a")
	tx := ta.tx(t, ta.key, 0, aatest.TokenAddress, nil, nil)
	tx.Paymaster = types.AddressToWord(paymaster)

	general, err := abi.PaymasterFlowABI.Pack("general", []byte{})
	require.NoError(t, err)
	tx.PaymasterInput = general
	require.NoError(t, ta.acc.PrepareForPaymaster(params.BootloaderAddress, common.Hash{}, common.Hash{}, tx))

	approval, err := abi.PaymasterFlowABI.Pack("approvalBased", aatest.TokenAddress, big.NewInt(500), []byte{})
	require.NoError(t, err)
	tx.PaymasterInput = approval
	require.NoError(t, ta.acc.PrepareForPaymaster(params.BootloaderAddress, common.Hash{}, common.Hash{}, tx))
	require.Equal(t, big.NewInt(500), ta.env.Token.Allowance(ta.acc.Address(), paymaster))

	tx.PaymasterInput = []byte{0xde, 0xad, 0xbe, 0xef}
	err = ta.acc.PrepareForPaymaster(params.BootloaderAddress, common.Hash{}, common.Hash{}, tx)
	var unsupported *accounts.UnsupportedPaymasterFlowError
	require.ErrorAs(t, err, &unsupported)
	require.Equal(t, [4]byte{0xde, 0xad, 0xbe, 0xef}, unsupported.Selector)

	tx.PaymasterInput = []byte{0x01}
	err = ta.acc.PrepareForPaymaster(params.BootloaderAddress, common.Hash{}, common.Hash{}, tx)
	require.ErrorIs(t, err, ErrShortPaymasterInput)
}

func TestIsValidSignature(t *testing.T) {
	t.Parallel()
	ta := newTestAccount(t)
	hash := crypto.Keccak256Hash([]byte("message"))

	sig, err := accounts.SignHash(hash, ta.key)
	require.NoError(t, err)
	magic, err := ta.acc.IsValidSignature(hash, sig)
	require.NoError(t, err)
	require.Equal(t, EIP1271SuccessMagic, magic)

	other, _ := aatest.NewKey(t)
	sig, err = accounts.SignHash(hash, other)
	require.NoError(t, err)
	magic, err = ta.acc.IsValidSignature(hash, sig)
	require.NoError(t, err)
	require.Equal(t, [4]byte{}, magic)

	input, err := abi.SystemAccountABI.Pack("isValidSignature", [32]byte(hash), sig)
	require.NoError(t, err)
	out, err := ta.env.Host.Call(common.Address{}, ta.acc.Address(), nil, input)
	require.NoError(t, err)
	magic, err = abi.UnpackBytes4(abi.SystemAccountABI, "isValidSignature", out)
	require.NoError(t, err)
	require.Equal(t, [4]byte{}, magic)
}

func TestTransferOwnership(t *testing.T) {
	t.Parallel()
	ta := newTestAccount(t)
	_, next := aatest.NewKey(t)

	require.ErrorIs(t, ta.acc.TransferOwnership(params.BootloaderAddress, next), accounts.ErrNotOwner)
	require.ErrorIs(t, ta.acc.TransferOwnership(ta.owner, common.Address{}), accounts.ErrInvalidOwner)
	require.NoError(t, ta.acc.TransferOwnership(ta.owner, next))
	require.Equal(t, next, ta.acc.Owner())
	require.ErrorIs(t, ta.acc.TransferOwnership(ta.owner, ta.owner), accounts.ErrNotOwner)

	// The bootloader reaches ownership only through a call the account makes
	// on itself.
	data, err := abi.SystemAccountABI.Pack("transferOwnership", ta.owner)
	require.NoError(t, err)
	tx := ta.tx(t, ta.key, 0, ta.acc.Address(), nil, data)
	require.NoError(t, ta.acc.ExecuteTransaction(params.BootloaderAddress, common.Hash{}, common.Hash{}, tx))
	require.Equal(t, ta.owner, ta.acc.Owner())
}
