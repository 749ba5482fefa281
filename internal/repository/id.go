package repository

import (
	"crypto/rand"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// idLength is long enough that collisions are negligible at the expected
// request volume (36^20 possible IDs).
const idLength = 20

// newID returns an opaque base-36 identifier.
func newID() string {
	buf := make([]byte, idLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the platform source is broken;
		// nothing sensible to do but panic like math/rand would.
		panic("repository: read random: " + err.Error())
	}
	for i, b := range buf {
		buf[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return string(buf)
}
