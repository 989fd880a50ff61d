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
	"bufio"
	"errors"
	"fmt"
	"math/big"
	"os"
	"reflect"
	"unicode"

	"github.com/bsi-ethereum/go-aa/accounts"
	"github.com/bsi-ethereum/go-aa/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/naoina/toml"
	"github.com/urfave/cli/v2"
)

var dumpConfigCommand = &cli.Command{
	Action:    dumpConfig,
	Name:      "dumpconfig",
	Usage:     "Export configuration values in a TOML format",
	ArgsUsage: "<dumpfile (optional)>",
	Flags:     append(networkFlags, ownerKeyFlag, saltFlag),
	Description: `
The dumpconfig command shows configuration values merged from the config file
and the command line flags.`,
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

type networkConfig struct {
	Kind       string // erc4337 or zksync
	ChainID    uint64
	EntryPoint common.Address
	Time       uint64 `toml:",omitempty"` // block timestamp, zero for the wall clock
}

type accountConfig struct {
	OwnerKey string `toml:",omitempty"`
	Salt     uint64
	Funding  *big.Int // wei credited to the account before it runs
	Deposit  *big.Int // wei the account pre-deposits at the entry point
	Mint     *big.Int // tokens the simulated operation mints to the account
}

type aaConfig struct {
	Network networkConfig
	Account accountConfig
}

func defaultConfig() aaConfig {
	return aaConfig{
		Network: networkConfig{
			Kind:       string(accounts.KindStandard),
			ChainID:    params.DevChainID.Uint64(),
			EntryPoint: params.EntryPointAddress,
		},
		Account: accountConfig{
			Funding: big.NewInt(params.Ether),
			Deposit: new(big.Int),
			Mint:    big.NewInt(1000),
		},
	}
}

func loadConfig(file string, cfg *aaConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig loads the config file, if any, and applies command line flags.
func makeConfig(ctx *cli.Context) (aaConfig, error) {
	cfg := defaultConfig()
	if file := ctx.String(configFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return cfg, err
		}
	}
	if ctx.IsSet(kindFlag.Name) {
		cfg.Network.Kind = ctx.String(kindFlag.Name)
	}
	if ctx.IsSet(chainIDFlag.Name) {
		cfg.Network.ChainID = ctx.Uint64(chainIDFlag.Name)
	}
	if ctx.IsSet(entryPointFlag.Name) {
		addr := ctx.String(entryPointFlag.Name)
		if !common.IsHexAddress(addr) {
			return cfg, fmt.Errorf("invalid entry point address %q", addr)
		}
		cfg.Network.EntryPoint = common.HexToAddress(addr)
	}
	if ctx.IsSet(ownerKeyFlag.Name) {
		cfg.Account.OwnerKey = ctx.String(ownerKeyFlag.Name)
	}
	if ctx.IsSet(saltFlag.Name) {
		cfg.Account.Salt = ctx.Uint64(saltFlag.Name)
	}
	return cfg, cfg.validate()
}

func (cfg *aaConfig) validate() error {
	switch accounts.Kind(cfg.Network.Kind) {
	case accounts.KindStandard, accounts.KindSystem:
	default:
		return fmt.Errorf("unknown account kind %q", cfg.Network.Kind)
	}
	if cfg.Network.ChainID == 0 {
		return errors.New("chain ID must be set")
	}
	for name, v := range map[string]*big.Int{"Funding": cfg.Account.Funding, "Deposit": cfg.Account.Deposit, "Mint": cfg.Account.Mint} {
		if v == nil || v.Sign() < 0 {
			return fmt.Errorf("account %s must be a non-negative amount", name)
		}
	}
	return nil
}

func (cfg *aaConfig) chainID() *big.Int {
	return new(big.Int).SetUint64(cfg.Network.ChainID)
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}

	dump := os.Stdout
	if ctx.NArg() > 0 {
		dump, err = os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer dump.Close()
	}
	dump.WriteString(comment)
	dump.Write(out)

	return nil
}

const comment = "# Note: this config doesn't contain the owner key if it was generated.\n\n"
