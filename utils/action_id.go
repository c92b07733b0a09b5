package utils

import (
	"crypto/rand"
	"math/big"
)

const actionIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
const actionIDLength = 30

// GenerateActionID returns an opaque, globally unique moderation ID.
func GenerateActionID() string {
	buf := make([]byte, actionIDLength)
	max := big.NewInt(int64(len(actionIDAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken
			panic(err)
		}
		buf[i] = actionIDAlphabet[n.Int64()]
	}
	return string(buf)
}
