package model

import (
	"fmt"
	"time"
)

// SnapshotVersion is a server-observed point of consistency.
type SnapshotVersion struct {
	Seconds int64
	Nanos   int32
}

// NoVersion is the zero version; it sorts before every real one.
var NoVersion = SnapshotVersion{}

func VersionFromTime(t time.Time) SnapshotVersion {
	return SnapshotVersion{Seconds: t.Unix(), Nanos: int32(t.Nanosecond())}
}

func (v SnapshotVersion) IsNone() bool { return v == NoVersion }

func (v SnapshotVersion) Time() time.Time {
	return time.Unix(v.Seconds, int64(v.Nanos)).UTC()
}

func (v SnapshotVersion) Compare(o SnapshotVersion) int {
	switch {
	case v.Seconds < o.Seconds:
		return -1
	case v.Seconds > o.Seconds:
		return 1
	case v.Nanos < o.Nanos:
		return -1
	case v.Nanos > o.Nanos:
		return 1
	default:
		return 0
	}
}

func (v SnapshotVersion) String() string {
	if v.IsNone() {
		return "SnapshotVersion(none)"
	}
	return fmt.Sprintf("SnapshotVersion(%d.%09d)", v.Seconds, v.Nanos)
}

// StreamToken is an opaque server continuation marker.
type StreamToken []byte

// Clone returns a byte-for-byte copy. A nil token stays nil.
func (t StreamToken) Clone() StreamToken {
	if t == nil {
		return nil
	}
	out := make(StreamToken, len(t))
	copy(out, t)
	return out
}
