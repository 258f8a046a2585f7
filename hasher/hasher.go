// Package hasher implements the storage key hashers used by Substrate
// runtimes.
package hasher

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/crypto/blake2b"
)

type Hasher int

const (
	Blake2_128 Hasher = iota
	Blake2_256
	Blake2_128Concat
	Twox128
	Twox256
	Twox64Concat
	Identity
)

var hasherNames = []string{
	"Blake2_128",
	"Blake2_256",
	"Blake2_128Concat",
	"Twox128",
	"Twox256",
	"Twox64Concat",
	"Identity",
}

func (h Hasher) String() string {
	if h < 0 || int(h) >= len(hasherNames) {
		return fmt.Sprintf("Hasher(%d)", int(h))
	}
	return hasherNames[h]
}

// ParseHasher maps a metadata hasher name to a Hasher.
func ParseHasher(name string) (Hasher, error) {
	for i, n := range hasherNames {
		if n == name {
			return Hasher(i), nil
		}
	}
	return 0, fmt.Errorf("unknown hasher %q", name)
}

func (h Hasher) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hasher) UnmarshalText(text []byte) error {
	parsed, err := ParseHasher(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// IsConcat reports whether the raw key is appended after the hash.
func (h Hasher) IsConcat() bool {
	return h == Blake2_128Concat || h == Twox64Concat || h == Identity
}

// HashLength is the length of the hash part of the output, excluding any
// concatenated key.
func (h Hasher) HashLength() int {
	switch h {
	case Blake2_128, Blake2_128Concat, Twox128:
		return 16
	case Blake2_256, Twox256:
		return 32
	case Twox64Concat:
		return 8
	}
	return 0
}

func (h Hasher) Hash(data []byte) []byte {
	switch h {
	case Blake2_128:
		return Blake2b128(data)
	case Blake2_256:
		return Blake2b256(data)
	case Blake2_128Concat:
		return append(Blake2b128(data), data...)
	case Twox128:
		return Twox(data, 2)
	case Twox256:
		return Twox(data, 4)
	case Twox64Concat:
		return append(Twox(data, 1), data...)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out
}

func Blake2b128(data []byte) []byte {
	h, _ := blake2b.New(16, nil)
	h.Write(data)
	return h.Sum(nil)
}

func Blake2b256(data []byte) []byte {
	sum := blake2b.Sum256(data)
	return sum[:]
}

// Twox concatenates rounds xxhash64 digests of data seeded 0..rounds-1,
// each written little-endian.
func Twox(data []byte, rounds int) []byte {
	out := make([]byte, 0, rounds*8)
	for seed := 0; seed < rounds; seed++ {
		d := xxhash.NewWithSeed(uint64(seed))
		d.Write(data)
		out = binary.LittleEndian.AppendUint64(out, d.Sum64())
	}
	return out
}
