package runtime

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// spillFileName derives a deterministic, collision-resistant temp-file
// name prefix from (component, runID, sequence) via xxhash, so that spill
// files from concurrent sorters/priority queues in the same run never
// collide regardless of filesystem case-sensitivity quirks.
func spillFileName(component, runID string, sequence uint64) string {
	h := xxhash.New()
	_, _ = h.WriteString(component)
	_, _ = h.WriteString(runID)
	var seq [8]byte
	for i := range seq {
		seq[i] = byte(sequence >> (8 * i))
	}
	_, _ = h.Write(seq[:])
	return fmt.Sprintf("%s-%016x-*.spill", component, h.Sum64())
}
