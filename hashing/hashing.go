// Package hashing produces stable string digests of values. Queue fingerprints and
// batch identifiers are built on it.
package hashing

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"

	"github.com/OneOfOne/xxhash"
	"github.com/zeebo/xxh3"
)

// HashFunc is a function that takes a Hashable object
// and returns a string representation of its hashing.
// As an example, the Sha256 function is a HashFunc.
// This lets us talk about hashing functions in a generic way.
type HashFunc func(hashable Hashable) (string, error)

// Hashable is an interface that allows an object to update
// a hash.Hash with its contents. This is useful for hashing
// objects so that they can be easily compared.
type Hashable interface {
	UpdateHash(h hash.Hash) error
}

// Sha256 returns the SHA256 hashing of the given Hashable
// as a hex-encoded string. If the Hashable fails to
// update the hashing, an error is returned.
func Sha256(hashable Hashable) (string, error) {
	h := sha256.New()

	if err := hashable.UpdateHash(h); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// XXH3 returns the 64-bit XXH3 digest of hashable as 16 hex characters.
// It is the default for queue message fingerprints.
func XXH3(hashable Hashable) (string, error) {
	h := xxh3.New()

	if err := hashable.UpdateHash(h); err != nil {
		return "", err
	}

	return fmt.Sprintf("%016x", h.Sum64()), nil
}

// XXHash64 returns the 64-bit XXH64 digest of hashable as 16 hex characters.
func XXHash64(hashable Hashable) (string, error) {
	h := xxhash.New64()

	if err := hashable.UpdateHash(h); err != nil {
		return "", err
	}

	return fmt.Sprintf("%016x", h.Sum64()), nil
}

type HashableString string

func (s HashableString) String() string {
	return string(s)
}

func (s HashableString) UpdateHash(h hash.Hash) error {
	_, err := h.Write([]byte(s))
	if err != nil {
		return err
	}

	return nil
}

func (s HashableString) Equals(other HashableString) bool {
	return s == other
}

type HashableBytes []byte

func (b HashableBytes) UpdateHash(h hash.Hash) error {
	_, err := h.Write(b)

	return err
}

func (b HashableBytes) Equals(other HashableBytes) bool {
	return bytes.Equal(b, other)
}

// HashableJSON hashes the JSON encoding of its value. Map keys are sorted by
// encoding/json, so equal values hash equally.
type HashableJSON struct {
	Value any
}

func (j HashableJSON) UpdateHash(h hash.Hash) error {
	data, err := json.Marshal(j.Value)
	if err != nil {
		return fmt.Errorf("hashing: encode value: %w", err)
	}

	_, err = h.Write(data)

	return err
}
