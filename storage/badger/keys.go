package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/jurorlink/core"
)

// Key prefixes for different data types
const (
	candidateRecordPrefix = "canrec"
	candidateJurorPrefix  = "canjur"
	jobRecordPrefix       = "jobrec"
	jobJurorPrefix        = "jobjur"
)

// makeCandidateKey generates a key for a candidate by ID.
func makeCandidateKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", candidateRecordPrefix, id))
}

// makeCandidateJurorKey generates a composite key for the juror index.
// Format: prefix:jurorID:candidateID
func makeCandidateJurorKey(jurorID string, id core.ID) []byte {
	prefix := makeCandidateJurorScanPrefix(jurorID)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeCandidateJurorScanPrefix generates the scan prefix for one juror's
// candidate index. The trailing separator keeps juror IDs that share a
// prefix from bleeding into each other's scans.
func makeCandidateJurorScanPrefix(jurorID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", candidateJurorPrefix, jurorID))
}

// makeJobKey generates a key for a search job by its UUID.
func makeJobKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", jobRecordPrefix, id))
}

// makeJobJurorKey generates a composite key for the job history index.
// Format: prefix:jurorID:timestamp:jobID, timestamp in BigEndian so a
// forward scan yields jobs in insertion order.
func makeJobJurorKey(jurorID string, insertedAt time.Time, id string) []byte {
	prefix := makeJobJurorScanPrefix(jurorID)
	buf := make([]byte, len(prefix)+8+len(id))
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(insertedAt.UnixMicro()))
	offset += 8
	copy(buf[offset:], id)
	return buf
}

// makeJobJurorScanPrefix generates the scan prefix for one juror's job history.
func makeJobJurorScanPrefix(jurorID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", jobJurorPrefix, jurorID))
}
