package idgen

import (
	"crypto/rand"
	"encoding/hex"
)

// CallID returns a fresh "<hex64>-<hex64>" Call-ID value drawn from a
// cryptographically seeded RNG. No state is shared between calls; collision
// probability is negligible within a process's lifetime, so no dedup check
// is performed.
func CallID() string {
	return hex64() + "-" + hex64()
}

// Tag returns a fresh "<hex64>" tag value for a From/To header.
func Tag() string {
	return hex64()
}

// hex64 returns 64 lowercase hex characters, i.e. 32 random bytes.
func hex64() string {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand.Read on a supported platform only fails if the
		// system entropy source is unavailable, which this server cannot
		// recover from; a zero-value fallback would silently produce
		// colliding ids, which is worse than a hard failure.
		panic("idgen: crypto/rand unavailable: " + err.Error())
	}
	return hex.EncodeToString(b[:])
}
