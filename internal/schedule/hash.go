package schedule

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// PreviewHash digests the normalized occurrence set of a series: occurrences
// sorted by key, each contributing its key and start/end instants, prefixed
// with the series id and rule version. Conflict annotations never enter the
// digest; they are display data. Preview and publish must both call this so
// a stale selection is always detected.
func PreviewHash(seriesID uuid.UUID, occurrences []Occurrence) string {
	sorted := make([]Occurrence, len(occurrences))
	copy(sorted, occurrences)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	h := sha256.New()
	fmt.Fprintf(h, "%s|%s\n", seriesID, RuleVersion)
	for _, occ := range sorted {
		fmt.Fprintf(h, "%s|%s|%s\n",
			occ.Key,
			occ.StartAt.Format(time.RFC3339),
			occ.EndAt.Format(time.RFC3339),
		)
	}

	return hex.EncodeToString(h.Sum(nil))
}
