package badger

import (
	"fmt"

	"github.com/poiesic/servitor/core"
)

// Key prefixes for different data types
const (
	sessionPrefix = "sesmsg"
	segmentPrefix = "seg"
)

// makeSessionKey generates a key for a session's message list.
func makeSessionKey(sessionId string) []byte {
	return []byte(fmt.Sprintf("%s:%s", sessionPrefix, sessionId))
}

// makeSegmentKey generates a key for a segment by ID.
func makeSegmentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", segmentPrefix, id))
}
