package database

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// OperationID identifies an operation between its submission and its
// confirmation in a block.
type OperationID uint64

// GenerateID derives the id of an operation from its content and the time it
// was submitted, truncated to whole seconds since the Unix epoch. The id is
// the first eight bytes of the SHA-256 digest over the big-endian encoding of
// every field. Identical operations submitted within the same second share an
// id.
func GenerateID(to AccountID, from AccountID, amount float64, submitted time.Duration) OperationID {
	var buf [32]byte
	binary.BigEndian.PutUint64(buf[0:8], uint64(to))
	binary.BigEndian.PutUint64(buf[8:16], uint64(from))
	binary.BigEndian.PutUint64(buf[16:24], math.Float64bits(amount))
	binary.BigEndian.PutUint64(buf[24:32], uint64(submitted/time.Second))

	sum := sha256.Sum256(buf[:])

	return OperationID(binary.BigEndian.Uint64(sum[:8]))
}

// String implements the fmt.Stringer interface.
func (id OperationID) String() string {
	return hexutil.EncodeUint64(uint64(id))
}

// MarshalText renders the id as a 0x-prefixed hex quantity so the full 64
// bits survive JSON clients that parse numbers as doubles.
func (id OperationID) MarshalText() ([]byte, error) {
	return hexutil.Uint64(id).MarshalText()
}

// UnmarshalText parses a 0x-prefixed hex quantity.
func (id *OperationID) UnmarshalText(input []byte) error {
	var v hexutil.Uint64
	if err := v.UnmarshalText(input); err != nil {
		return err
	}
	*id = OperationID(v)
	return nil
}
