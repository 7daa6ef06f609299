package utils

import (
	"crypto/rand"
	"math/big"
)

const charset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateCode returns n characters from an alphabet without look-alike
// symbols. It returns an empty string if the system random source fails.
func GenerateCode(n int) string {
	b := make([]byte, n)
	for i := range b {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return ""
		}
		b[i] = charset[num.Int64()]
	}
	return string(b)
}
