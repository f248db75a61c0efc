package rlp

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeCanonicalStrings(t *testing.T) {
	enc, err := EncodeToBytes([]byte(nil))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x80}, enc)

	enc, err = EncodeToBytes([]byte("dog"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x83, 'd', 'o', 'g'}, enc)

	enc, err = EncodeToBytes([]byte{0x7f})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x7f}, enc)

	enc, err = EncodeToBytes([]byte{0x80})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x81, 0x80}, enc)
}

func TestEncodeUintZeroIsEmptyString(t *testing.T) {
	enc, err := EncodeToBytes(uint64(0))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x80}, enc)

	enc, err = EncodeToBytes(uint64(15))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0f}, enc)

	enc, err = EncodeToBytes(uint64(1024))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x82, 0x04, 0x00}, enc)
}

func TestStructRoundTrip(t *testing.T) {
	type record struct {
		Nonce   uint64
		Balance *big.Int
		Blob    []byte
		Flag    bool
	}
	in := record{Nonce: 7, Balance: big.NewInt(1_000_000), Blob: []byte{1, 2, 3}, Flag: true}

	enc, err := EncodeToBytes(in)
	require.NoError(t, err)

	var out record
	require.NoError(t, DecodeBytes(enc, &out))
	assert.Equal(t, in.Nonce, out.Nonce)
	assert.Equal(t, 0, in.Balance.Cmp(out.Balance))
	assert.Equal(t, in.Blob, out.Blob)
	assert.Equal(t, in.Flag, out.Flag)
}

func TestNestedListRoundTrip(t *testing.T) {
	type inner struct {
		A uint64
		B []byte
	}
	in := []inner{{A: 1, B: []byte("x")}, {A: 2, B: []byte("yz")}}

	enc, err := EncodeToBytes(in)
	require.NoError(t, err)

	var out []inner
	require.NoError(t, DecodeBytes(enc, &out))
	assert.Equal(t, in, out)
}

func TestDecodeRejectsNonCanonicalSize(t *testing.T) {
	// 0x81 0x05: single byte below 0x80 must be encoded as itself.
	var out []byte
	err := DecodeBytes([]byte{0x81, 0x05}, &out)
	assert.ErrorIs(t, err, ErrCanonSize)
}

func TestDecodeRejectsTrailingData(t *testing.T) {
	var out []byte
	err := DecodeBytes([]byte{0x83, 'd', 'o', 'g', 0x00}, &out)
	assert.Error(t, err)
}

func TestRawSplicesVerbatim(t *testing.T) {
	type wrapper struct {
		Pre Raw
	}
	enc, err := EncodeToBytes(wrapper{Pre: Raw{0x83, 'd', 'o', 'g'}})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xc4, 0x83, 'd', 'o', 'g'}, enc)
}
