package workqueue

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand"

	"sflabel/internal/dataset"
)

// Seed derives the per-annotator shuffle seed: the first 8 bytes of
// sha256("queue:" + uid) read big-endian. A keyed cryptographic hash rather
// than language-default randomness because the base order must reconstruct
// byte-for-byte after a crash even if the persisted record is lost.
func Seed(annotatorUID string) uint64 {
	sum := sha256.Sum256([]byte("queue:" + annotatorUID))
	return binary.BigEndian.Uint64(sum[:8])
}

// BuildBaseOrder constructs the deterministic base ordering of item ids for
// one annotator over one dataset snapshot.
//
// Items are partitioned stably into an evidence group and a remainder, each
// group is shuffled with a Fisher-Yates pass over a single seeded stream
// (evidence first — the call order decides which draws each group consumes
// and is part of the contract), and the groups are concatenated with
// evidence leading.
func BuildBaseOrder(items []dataset.Item, annotatorUID string) []string {
	var evidence, remainder []string
	for _, item := range items {
		if item.HasEvidence() {
			evidence = append(evidence, item.RequestID)
		} else {
			remainder = append(remainder, item.RequestID)
		}
	}

	rng := rand.New(rand.NewSource(int64(Seed(annotatorUID))))
	shuffle(evidence, rng)
	shuffle(remainder, rng)

	order := make([]string, 0, len(evidence)+len(remainder))
	order = append(order, evidence...)
	order = append(order, remainder...)
	return order
}

// shuffle is a pinned Fisher-Yates pass. Written out rather than delegated
// to rand.Shuffle so the draw sequence is fixed by this code, not by the
// standard library's implementation choices.
func shuffle(ids []string, rng *rand.Rand) {
	for i := len(ids) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}
}
