package sink

import (
	"encoding/binary"
	"encoding/hex"
	"math"

	"golang.org/x/crypto/sha3"
)

// Fingerprint hashes the IEEE-754 bits of every amplitude (real then
// imaginary, little endian) with SHA3-256. Two states share a fingerprint
// only if they are bit-identical in logical order.
func Fingerprint(amps []complex128) string {
	h := sha3.New256()
	var buf [16]byte
	for _, a := range amps {
		binary.LittleEndian.PutUint64(buf[:8], math.Float64bits(real(a)))
		binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(imag(a)))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}
