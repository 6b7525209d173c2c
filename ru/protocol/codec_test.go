/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestU8(t *testing.T) {
	b := []byte{0x00, 0xff, 0x7f}
	v, err := U8(b, 1)
	require.NoError(t, err)
	assert.Equal(t, uint8(0xff), v)

	_, err = U8(b, 3)
	require.Error(t, err)
	te := &TruncatedError{}
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 3, te.Offset)
	assert.Equal(t, 1, te.Need)
}

func TestU16(t *testing.T) {
	b := []byte{0x12, 0x34, 0x56}
	v, err := U16(b, 0)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), v)

	v, err = U16(b, 1)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x3456), v)

	_, err = U16(b, 2)
	require.Error(t, err)
}

func TestU24(t *testing.T) {
	b := []byte{0x12, 0x34, 0x56, 0x78}
	v, err := U24(b, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x123456), v)

	v, err = U24(b, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x345678), v)

	_, err = U24(b, 2)
	require.Error(t, err)
}

func TestU32(t *testing.T) {
	b := []byte{0x3b, 0x9a, 0xca, 0x10}
	v, err := U32(b, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(1000000016), v)

	_, err = U32(b, 1)
	require.Error(t, err)
}

func TestI16(t *testing.T) {
	tests := []struct {
		in   []byte
		want int16
	}{
		{[]byte{0x00, 0x0a}, 10},
		{[]byte{0xff, 0xf6}, -10},
		{[]byte{0x80, 0x00}, -32768},
		{[]byte{0x7f, 0xff}, 32767},
	}
	for _, tt := range tests {
		v, err := I16(tt.in, 0)
		require.NoError(t, err)
		assert.Equal(t, tt.want, v)
	}
	_, err := I16([]byte{0x01}, 0)
	require.Error(t, err)
}

func TestI32(t *testing.T) {
	v, err := I32([]byte{0xff, 0xff, 0xff, 0xff}, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(-1), v)

	v, err = I32([]byte{0x7f, 0xff, 0xff, 0xff}, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(2147483647), v)

	_, err = I32([]byte{0x00, 0x00, 0x00}, 0)
	require.Error(t, err)
}

func TestNegativeOffset(t *testing.T) {
	_, err := U16([]byte{0x01, 0x02}, -1)
	require.Error(t, err)
}
