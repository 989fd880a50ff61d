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
	"encoding/json"
	"math/big"
	"testing"

	"github.com/bsi-ethereum/go-aa/params"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

var (
	testFrom = common.HexToAddress("0xacc0")
	testTo   = common.HexToAddress("0x70")
)

func testTransaction() *Transaction {
	tx := NewTransaction(testFrom, testTo, 3, big.NewInt(10), []byte{0xca, 0xfe})
	tx.GasLimit = big.NewInt(100_000)
	tx.MaxFeePerGas = big.NewInt(2)
	tx.MaxPriorityFeePerGas = big.NewInt(1)
	return tx
}

func TestTransactionAddresses(t *testing.T) {
	t.Parallel()
	tx := testTransaction()
	require.Equal(t, testFrom, tx.FromAddress())
	require.Equal(t, testTo, tx.ToAddress())
	require.Equal(t, common.Address{}, tx.PaymasterAddress())
	require.Equal(t, int64(params.EIP712TxType), tx.TxType.Int64())
}

func TestTransactionFees(t *testing.T) {
	t.Parallel()
	tx := testTransaction()
	require.Equal(t, big.NewInt(200_000), tx.Fee())
	require.Equal(t, big.NewInt(200_010), tx.TotalRequiredBalance())

	tx.Paymaster = AddressToWord(common.HexToAddress("0x9a9a"))
	require.Equal(t, big.NewInt(10), tx.TotalRequiredBalance())

	require.Zero(t, (&Transaction{}).TotalRequiredBalance().Sign())
}

func TestTransactionSignedHash(t *testing.T) {
	t.Parallel()
	tx := testTransaction()
	chainID := big.NewInt(324)

	hash, err := tx.SignedHash(chainID)
	require.NoError(t, err)
	again, err := tx.SignedHash(chainID)
	require.NoError(t, err)
	require.Equal(t, hash, again)

	other, err := tx.SignedHash(big.NewInt(1))
	require.NoError(t, err)
	require.NotEqual(t, hash, other)

	// The signature is not part of what is signed.
	tx.Signature = []byte{0x01}
	signed, err := tx.SignedHash(chainID)
	require.NoError(t, err)
	require.Equal(t, hash, signed)

	tx.Nonce = big.NewInt(4)
	other, err = tx.SignedHash(chainID)
	require.NoError(t, err)
	require.NotEqual(t, hash, other)

	tx.TxType = big.NewInt(0x42)
	_, err = tx.SignedHash(chainID)
	require.ErrorIs(t, err, ErrUnsupportedTxType)
}

func TestTransactionEthereumHash(t *testing.T) {
	t.Parallel()
	chainID := big.NewInt(324)
	tx := testTransaction()
	to := testTo

	tx.TxType = big.NewInt(gethtypes.DynamicFeeTxType)
	hash, err := tx.SignedHash(chainID)
	require.NoError(t, err)
	want := gethtypes.LatestSignerForChainID(chainID).Hash(gethtypes.NewTx(&gethtypes.DynamicFeeTx{
		ChainID: chainID, Nonce: 3, GasTipCap: big.NewInt(1), GasFeeCap: big.NewInt(2),
		Gas: 100_000, To: &to, Value: big.NewInt(10), Data: []byte{0xca, 0xfe},
	}))
	require.Equal(t, want, hash)

	tx.TxType = big.NewInt(gethtypes.LegacyTxType)
	hash, err = tx.SignedHash(chainID)
	require.NoError(t, err)
	want = gethtypes.HomesteadSigner{}.Hash(gethtypes.NewTx(&gethtypes.LegacyTx{
		Nonce: 3, GasPrice: big.NewInt(2), Gas: 100_000, To: &to, Value: big.NewInt(10), Data: []byte{0xca, 0xfe},
	}))
	require.Equal(t, want, hash)
}

func TestTransactionHashBindsSignature(t *testing.T) {
	t.Parallel()
	tx := testTransaction()
	tx.Signature = []byte{0x01}
	first, err := tx.Hash(params.DevChainID)
	require.NoError(t, err)

	tx.Signature = []byte{0x02}
	second, err := tx.Hash(params.DevChainID)
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestTransactionJSON(t *testing.T) {
	t.Parallel()
	var tx Transaction
	err := json.Unmarshal([]byte(`{
		"from": "0x000000000000000000000000000000000000acc0",
		"to": "0x0000000000000000000000000000000000000070",
		"nonce": "0x3",
		"gasLimit": "0x186a0",
		"paymaster": "0x0000000000000000000000000000000000009a9a",
		"data": "0xcafe"
	}`), &tx)
	require.NoError(t, err)
	require.Equal(t, testFrom, tx.FromAddress())
	require.Equal(t, testTo, tx.ToAddress())
	require.Equal(t, common.HexToAddress("0x9a9a"), tx.PaymasterAddress())
	require.Equal(t, int64(params.EIP712TxType), tx.TxType.Int64())
	require.Equal(t, big.NewInt(100_000), tx.GasLimit)
	require.Zero(t, tx.Value.Sign())
	require.Equal(t, []byte{0xca, 0xfe}, tx.Data)

	enc, err := json.Marshal(tx)
	require.NoError(t, err)
	require.Contains(t, string(enc), `"from":"0x000000000000000000000000000000000000acc0"`)

	require.Error(t, json.Unmarshal([]byte(`{"from":"0x000000000000000000000000000000000000acc0"}`), &tx))
}
