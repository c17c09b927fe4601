// Package fingerprint computes a change-detecting digest over a task
// collection. The digest is a cache-validity token, not a security
// primitive: two identical task sets always produce the same digest, and
// mutating any folded field produces a different one.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"sort"
	"strconv"
	"time"

	"github.com/planpilot/planpilot/cmd/server/internal/models"
)

// Field and record separators keep field boundaries unambiguous so that
// distinct concatenations cannot collide by boundary shifting.
const (
	fieldSep  = 0x1f
	recordSep = 0x1e
	absent    = "-"
)

// Compute digests the identifier, name, completion flag, priority, due
// timestamp and estimated duration of every task, after sorting by
// identifier so input order does not affect the result. An empty
// collection yields the distinguished empty string, distinct from every
// non-empty digest.
func Compute(tasks []models.Task) string {
	if len(tasks) == 0 {
		return ""
	}

	sorted := make([]models.Task, len(tasks))
	copy(sorted, tasks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	h := sha256.New()
	for _, t := range sorted {
		writeField(h, t.ID)
		writeField(h, t.Name)
		writeField(h, strconv.FormatBool(t.Completed))
		writeField(h, string(t.Priority))
		if t.DueDate != nil {
			writeField(h, t.DueDate.UTC().Format(time.RFC3339))
		} else {
			writeField(h, absent)
		}
		if t.EstimatedHours != nil {
			writeField(h, strconv.FormatFloat(*t.EstimatedHours, 'g', -1, 64))
		} else {
			writeField(h, absent)
		}
		h.Write([]byte{recordSep})
	}

	return hex.EncodeToString(h.Sum(nil))
}

func writeField(h hash.Hash, field string) {
	h.Write([]byte(field))
	h.Write([]byte{fieldSep})
}
