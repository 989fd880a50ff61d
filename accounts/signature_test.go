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

package accounts

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestRecoverSignature(t *testing.T) {
	t.Parallel()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer := crypto.PubkeyToAddress(key.PublicKey)
	hash := crypto.Keccak256Hash([]byte("operation"))

	sig, err := SignHash(hash, key)
	require.NoError(t, err)
	require.Contains(t, []byte{27, 28}, sig[64])

	addr, err := ECDSARecoverer{}.Recover(hash, sig)
	require.NoError(t, err)
	require.Equal(t, signer, addr)

	// Raw 0/1 recovery ids are accepted as well.
	raw := common.CopyBytes(sig)
	raw[64] -= 27
	addr, err = ECDSARecoverer{}.Recover(hash, raw)
	require.NoError(t, err)
	require.Equal(t, signer, addr)

	// A signature over another hash recovers someone else.
	addr, err = ECDSARecoverer{}.Recover(crypto.Keccak256Hash([]byte("other")), sig)
	if err == nil {
		require.NotEqual(t, signer, addr)
	}
}

func TestRecoverMalformed(t *testing.T) {
	t.Parallel()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	hash := crypto.Keccak256Hash([]byte("operation"))
	sig, err := SignHash(hash, key)
	require.NoError(t, err)

	_, err = ECDSARecoverer{}.Recover(hash, sig[:64])
	require.ErrorIs(t, err, ErrMalformedSignature)

	_, err = ECDSARecoverer{}.Recover(hash, append(common.CopyBytes(sig), 0))
	require.ErrorIs(t, err, ErrMalformedSignature)

	highS := common.CopyBytes(sig)
	s := new(big.Int).SetBytes(highS[32:64])
	s.Sub(crypto.S256().Params().N, s)
	copy(highS[32:64], common.LeftPadBytes(s.Bytes(), 32))
	highS[64] ^= 1
	_, err = ECDSARecoverer{}.Recover(hash, highS)
	require.ErrorIs(t, err, ErrMalformedSignature)

	badV := common.CopyBytes(sig)
	badV[64] = 5
	_, err = ECDSARecoverer{}.Recover(hash, badV)
	require.ErrorIs(t, err, ErrMalformedSignature)

	_, err = ECDSARecoverer{}.Recover(hash, make([]byte, 65))
	require.ErrorIs(t, err, ErrMalformedSignature)
}
