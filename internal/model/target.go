package model

import "fmt"

// TargetID is a caller-assigned watch target id.
type TargetID int32

// Purpose records why a watch target was opened.
type Purpose uint8

const (
	PurposeListen Purpose = iota
	PurposeExistenceFilterMismatch
	PurposeLimboResolution
)

func (p Purpose) String() string {
	switch p {
	case PurposeListen:
		return "listen"
	case PurposeExistenceFilterMismatch:
		return "existence-filter-mismatch"
	case PurposeLimboResolution:
		return "limbo-document"
	default:
		return fmt.Sprintf("Purpose(%d)", uint8(p))
	}
}

// Query selects the documents of one collection.
type Query struct {
	Parent         ResourcePath
	CollectionID   string
	AllDescendants bool
	Limit          int32
}

// Target is either a Query or an explicit document set.
type Target struct {
	Query     *Query
	Documents []DocumentKey
}

func QueryTarget(q Query) Target { return Target{Query: &q} }

func DocumentsTarget(keys ...DocumentKey) Target {
	return Target{Documents: append([]DocumentKey(nil), keys...)}
}

// QueryData describes one watch target. A non-empty ResumeToken takes
// precedence over ReadTime.
type QueryData struct {
	Target      Target
	TargetID    TargetID
	Purpose     Purpose
	ResumeToken []byte
	ReadTime    SnapshotVersion
	Once        bool
}
