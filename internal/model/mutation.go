package model

import "fmt"

type MutationKind uint8

const (
	// MutationSet replaces the whole document.
	MutationSet MutationKind = iota + 1
	// MutationPatch updates only the fields named in Mask.
	MutationPatch
	MutationDelete
	// MutationVerify only checks the precondition.
	MutationVerify
)

func (k MutationKind) String() string {
	switch k {
	case MutationSet:
		return "set"
	case MutationPatch:
		return "patch"
	case MutationDelete:
		return "delete"
	case MutationVerify:
		return "verify"
	default:
		return fmt.Sprintf("MutationKind(%d)", uint8(k))
	}
}

type PreconditionKind uint8

const (
	PreconditionNone PreconditionKind = iota
	PreconditionExists
	PreconditionUpdateTime
)

// Precondition guards a mutation on the server.
type Precondition struct {
	Kind       PreconditionKind
	Exists     bool
	UpdateTime SnapshotVersion
}

func MustExist(exists bool) Precondition {
	return Precondition{Kind: PreconditionExists, Exists: exists}
}

func UpdatedAt(v SnapshotVersion) Precondition {
	return Precondition{Kind: PreconditionUpdateTime, UpdateTime: v}
}

func (p Precondition) IsNone() bool { return p.Kind == PreconditionNone }

// FieldTransform asks the server to fill a field at commit time.
type FieldTransform struct {
	FieldPath string
}

// Mutation is one write against one document.
type Mutation struct {
	Kind         MutationKind
	Key          DocumentKey
	Value        ObjectValue
	Mask         []string
	Transforms   []FieldTransform
	Precondition Precondition
}

func NewSetMutation(key DocumentKey, value ObjectValue) Mutation {
	return Mutation{Kind: MutationSet, Key: key, Value: value}
}

func NewPatchMutation(key DocumentKey, value ObjectValue, mask []string) Mutation {
	return Mutation{Kind: MutationPatch, Key: key, Value: value, Mask: mask, Precondition: MustExist(true)}
}

func NewDeleteMutation(key DocumentKey) Mutation {
	return Mutation{Kind: MutationDelete, Key: key}
}

func NewVerifyMutation(key DocumentKey, version SnapshotVersion) Mutation {
	return Mutation{Kind: MutationVerify, Key: key, Precondition: UpdatedAt(version)}
}

func (m Mutation) String() string {
	return fmt.Sprintf("Mutation(%s %s)", m.Kind, m.Key)
}

// MutationResult is the outcome of one Mutation. CommitVersion is the same
// for every result of one response; UpdateVersion is the document's own.
type MutationResult struct {
	CommitVersion    SnapshotVersion
	UpdateVersion    SnapshotVersion
	TransformResults []any
}
