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
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/bsi-ethereum/go-aa/accounts"
	"github.com/bsi-ethereum/go-aa/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))
	return file
}

func TestLoadConfig(t *testing.T) {
	file := writeConfig(t, `
[Network]
Kind = "zksync"
ChainID = 324

[Account]
Salt = 7
Mint = 5000000000000000000000
`)
	cfg := defaultConfig()
	require.NoError(t, loadConfig(file, &cfg))
	require.NoError(t, cfg.validate())

	require.Equal(t, string(accounts.KindSystem), cfg.Network.Kind)
	require.Equal(t, params.ZkSyncEraChainID.Uint64(), cfg.Network.ChainID)
	require.Equal(t, params.EntryPointAddress, cfg.Network.EntryPoint)
	require.Equal(t, uint64(7), cfg.Account.Salt)
	mint, _ := new(big.Int).SetString("5000000000000000000000", 10)
	require.Equal(t, mint, cfg.Account.Mint)
	require.Equal(t, big.NewInt(params.Ether), cfg.Account.Funding)
}

func TestLoadConfigErrors(t *testing.T) {
	cfg := defaultConfig()
	err := loadConfig(writeConfig(t, "[Network]\nChain = 1\n"), &cfg)
	require.ErrorContains(t, err, "field 'Chain' is not defined")

	require.Error(t, loadConfig(filepath.Join(t.TempDir(), "missing.toml"), &cfg))

	cfg = defaultConfig()
	cfg.Network.Kind = "plain"
	require.ErrorContains(t, cfg.validate(), "unknown account kind")

	cfg = defaultConfig()
	cfg.Network.ChainID = 0
	require.Error(t, cfg.validate())

	cfg = defaultConfig()
	cfg.Account.Deposit = big.NewInt(-1)
	require.ErrorContains(t, cfg.validate(), "Deposit")
}

func TestDumpConfigRoundTrip(t *testing.T) {
	cfg := defaultConfig()
	cfg.Network.EntryPoint = common.HexToAddress("0x1111111111111111111111111111111111111111")
	cfg.Account.Salt = 3
	cfg.Account.Deposit = big.NewInt(params.GWei)

	out, err := tomlSettings.Marshal(&cfg)
	require.NoError(t, err)

	loaded := defaultConfig()
	require.NoError(t, loadConfig(writeConfig(t, comment+string(out)), &loaded))
	require.Equal(t, cfg.Network, loaded.Network)
	require.Equal(t, cfg.Account.Salt, loaded.Account.Salt)
	require.Zero(t, cfg.Account.Deposit.Cmp(loaded.Account.Deposit))
	require.Zero(t, cfg.Account.Mint.Cmp(loaded.Account.Mint))
}
