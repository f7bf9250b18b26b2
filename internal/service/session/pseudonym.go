// internal/service/session/pseudonym.go

package session

import (
	"fmt"
	"math/rand"
)

// Pseudonyms are adjective + animal + two digits, generated server-side and
// never user-chosen. They carry no trace of the underlying identity.

var pseudonymAdjectives = []string{
	"brisk", "calm", "clever", "curious", "gentle", "happy", "keen",
	"lively", "lucky", "mellow", "nimble", "quiet", "rapid", "shy",
	"sly", "sunny", "swift", "vivid", "wise", "zesty",
}

var pseudonymAnimals = []string{
	"iguana", "heron", "otter", "lynx", "manatee", "toucan", "gecko",
	"dolphin", "falcon", "jaguar", "coqui", "pelican", "turtle",
	"flamingo", "mongoose", "hummingbird", "parrot", "cricket",
	"seagull", "firefly",
}

const avatarSeedAlphabet = "0123456789abcdef"

// newPseudonym returns a generated display identity
func newPseudonym(r *rand.Rand) string {
	adjective := pseudonymAdjectives[r.Intn(len(pseudonymAdjectives))]
	animal := pseudonymAnimals[r.Intn(len(pseudonymAnimals))]
	return fmt.Sprintf("%s-%s-%02d", adjective, animal, r.Intn(100))
}

// newAvatarSeed returns a random seed the client renders an avatar from
func newAvatarSeed(r *rand.Rand) string {
	b := make([]byte, 16)
	for i := range b {
		b[i] = avatarSeedAlphabet[r.Intn(len(avatarSeedAlphabet))]
	}
	return string(b)
}
