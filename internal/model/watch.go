package model

import "fmt"

// WatchChange is one decoded watch event. It is one of *DocumentChange,
// *TargetChange or *ExistenceFilterChange.
type WatchChange interface {
	watchChange()
}

// DocumentChange moves a document into or out of targets. Doc is nil for a
// remove, where the client only learns the document left the targets.
type DocumentChange struct {
	UpdatedTargetIDs []TargetID
	RemovedTargetIDs []TargetID
	Key              DocumentKey
	Doc              *MaybeDocument
}

type TargetChangeState uint8

const (
	TargetNoChange TargetChangeState = iota
	TargetAdded
	TargetRemoved
	TargetCurrent
	TargetReset
)

func (s TargetChangeState) String() string {
	switch s {
	case TargetNoChange:
		return "no-change"
	case TargetAdded:
		return "added"
	case TargetRemoved:
		return "removed"
	case TargetCurrent:
		return "current"
	case TargetReset:
		return "reset"
	default:
		return fmt.Sprintf("TargetChangeState(%d)", uint8(s))
	}
}

// TargetChange reports a state change for targets. No TargetIDs means the
// change applies to every target.
type TargetChange struct {
	State       TargetChangeState
	TargetIDs   []TargetID
	ResumeToken []byte
	Cause       error
}

type ExistenceFilterChange struct {
	TargetID TargetID
	Count    int32
}

func (*DocumentChange) watchChange()        {}
func (*TargetChange) watchChange()          {}
func (*ExistenceFilterChange) watchChange() {}

// TargetError is the server status that removed a target.
type TargetError struct {
	Code    int32
	Message string
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("model: target error code=%d: %s", e.Code, e.Message)
}
