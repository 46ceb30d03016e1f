package common

import (
	"crypto/rand"
	"math/big"
)

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// MakeRandString returns a random string of ASCII letters and digits.
func MakeRandString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	max := big.NewInt(int64(len(alphanumeric)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = alphanumeric[n.Int64()]
	}
	return string(out), nil
}
