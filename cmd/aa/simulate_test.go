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

package main

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/bsi-ethereum/go-aa/accounts"
	"github.com/bsi-ethereum/go-aa/contracts/entrypoint"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func testConfig(kind accounts.Kind) *aaConfig {
	cfg := defaultConfig()
	cfg.Network.Kind = string(kind)
	cfg.Network.Time = 1_700_000_000
	return &cfg
}

func TestSimulate(t *testing.T) {
	for _, kind := range []accounts.Kind{accounts.KindStandard, accounts.KindSystem} {
		t.Run(string(kind), func(t *testing.T) {
			key, err := crypto.GenerateKey()
			require.NoError(t, err)

			cfg := testConfig(kind)
			sim, err := simulate(cfg, key)
			require.NoError(t, err)
			require.True(t, sim.Success)
			require.Empty(t, sim.Reason)
			require.Equal(t, crypto.PubkeyToAddress(key.PublicKey), sim.Owner)
			require.Equal(t, string(kind), sim.Account.URL.Scheme)
			require.Equal(t, cfg.Account.Mint, sim.Balance)
			require.Positive(t, sim.Fee.Sign())

			var report bytes.Buffer
			printReport(&report, sim)
			require.Contains(t, report.String(), sim.Account.URL.String())
			require.Contains(t, report.String(), sim.Hash.Hex())
		})
	}
}

func TestSimulateWithDeposit(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	cfg := testConfig(accounts.KindStandard)
	cfg.Account.Funding = new(big.Int)
	cfg.Account.Deposit = big.NewInt(1e18)
	sim, err := simulate(cfg, key)
	require.NoError(t, err)
	require.True(t, sim.Success)
	require.Positive(t, sim.Fee.Sign())
}

func TestSimulateUnfunded(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	cfg := testConfig(accounts.KindStandard)
	cfg.Account.Funding = new(big.Int)
	_, err = simulate(cfg, key)
	var failed *entrypoint.FailedOpError
	require.True(t, errors.As(err, &failed))
	require.Equal(t, "AA21 didn't pay prefund", failed.Reason)

	cfg = testConfig(accounts.KindSystem)
	cfg.Account.Funding = new(big.Int)
	_, err = simulate(cfg, key)
	require.ErrorIs(t, err, accounts.ErrInsufficientBalance)
}

func TestOwnerKey(t *testing.T) {
	cfg := defaultConfig()
	key, err := ownerKey(&cfg)
	require.NoError(t, err)
	require.NotNil(t, key)

	cfg.Account.OwnerKey = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	key, err = ownerKey(&cfg)
	require.NoError(t, err)
	require.Equal(t, "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23", crypto.PubkeyToAddress(key.PublicKey).Hex())

	cfg.Account.OwnerKey = "zz"
	_, err = ownerKey(&cfg)
	require.ErrorContains(t, err, "invalid owner key")
}
