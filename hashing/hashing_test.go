package hashing

import (
	"errors"
	"fmt"
	"hash"
	"testing"

	"github.com/OneOfOne/xxhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/xxh3"
)

func TestSha256(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    Hashable
		expected string
	}{
		{
			name:     "empty string",
			input:    HashableString(""),
			expected: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:     "simple string",
			input:    HashableString("hello"),
			expected: "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		},
		{
			name:     "empty bytes",
			input:    HashableBytes([]byte{}),
			expected: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:     "simple bytes",
			input:    HashableBytes([]byte("hello")),
			expected: "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := Sha256(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestXXH3(t *testing.T) {
	t.Parallel()

	empty, err := XXH3(HashableString(""))
	require.NoError(t, err)
	assert.Equal(t, "2d06800538d394c2", empty)

	hello, err := XXH3(HashableBytes("0001067983"))
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%016x", xxh3.HashString("0001067983")), hello)
	assert.Len(t, hello, 16)
}

func TestXXHash64(t *testing.T) {
	t.Parallel()

	empty, err := XXHash64(HashableString(""))
	require.NoError(t, err)
	assert.Equal(t, "ef46db3751d8e999", empty)

	hello, err := XXHash64(HashableString("hello"))
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%016x", xxhash.Checksum64([]byte("hello"))), hello)
}

func TestHashableJSON(t *testing.T) {
	t.Parallel()

	a, err := XXH3(HashableJSON{Value: map[string]any{"b": 2, "a": 1}})
	require.NoError(t, err)

	b, err := XXH3(HashableJSON{Value: map[string]any{"a": 1, "b": 2}})
	require.NoError(t, err)
	assert.Equal(t, a, b, "key order does not matter")

	_, err = XXH3(HashableJSON{Value: make(chan int)})
	require.Error(t, err)
}

type failingHashable struct{}

var errUpdate = errors.New("update failed")

func (failingHashable) UpdateHash(hash.Hash) error {
	return errUpdate
}

func TestHashFunctions_Error(t *testing.T) {
	t.Parallel()

	for name, fn := range map[string]HashFunc{"sha256": Sha256, "xxh3": XXH3, "xxhash64": XXHash64} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := fn(failingHashable{})
			require.ErrorIs(t, err, errUpdate)
		})
	}
}

func TestEquals(t *testing.T) {
	t.Parallel()

	assert.True(t, HashableString("a").Equals("a"))
	assert.False(t, HashableString("a").Equals("b"))
	assert.True(t, HashableBytes(nil).Equals(HashableBytes{}))
	assert.False(t, HashableBytes("a").Equals(HashableBytes("b")))
}
