package puzzle

import (
	"crypto/sha512"
	"encoding/hex"
)

// DigestLen is the length of a digest returned by Hash.
const DigestLen = 2 * sha512.Size

// Hash computes hex(SHA512(hex(SHA512(in.String())))).
//
// The second pass hashes the 128-byte lowercase hex text of the first digest,
// not its raw bytes. Verifiers on other platforms depend on that exact
// construction.
func Hash(in Input) string {
	var pre [48]byte
	first := sha512.Sum512(in.appendPreimage(pre[:0]))

	var hex1 [DigestLen]byte
	hex.Encode(hex1[:], first[:])

	second := sha512.Sum512(hex1[:])
	return hex.EncodeToString(second[:])
}

// IsWinning reports whether the first difficulty characters of digest are '0'.
//
// The scan stops at the end of digest without a length check, so a difficulty
// larger than len(digest) still passes when every character is '0'. A zero
// difficulty passes any digest.
func IsWinning(digest string, difficulty uint16) bool {
	for i := 0; i < len(digest) && i < int(difficulty); i++ {
		if digest[i] != '0' {
			return false
		}
	}
	return true
}

// Verify reports whether in is a solution: one hash pair and a prefix check.
func Verify(in Input) bool {
	return IsWinning(Hash(in), in.Difficulty)
}

// SelfTest returns the digest of the fixed input (2, 1, 1). It is a quick
// cross-implementation smoke check.
func SelfTest() string {
	return Hash(New(2, 1, 1))
}
