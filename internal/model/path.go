// Package model holds the domain values the sync engine exchanges with the
// wire codecs. Every value here is immutable once built.
package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyPath       = errors.New("model: empty path")
	ErrEmptySegment    = errors.New("model: empty path segment")
	ErrNotDocumentPath = errors.New("model: path does not name a document")
)

// DefaultDatabase is the database id used when none is configured.
const DefaultDatabase = "(default)"

// DatabaseID names one database inside a project.
type DatabaseID struct {
	ProjectID string
	Database  string
}

func NewDatabaseID(project, database string) DatabaseID {
	if database == "" {
		database = DefaultDatabase
	}
	return DatabaseID{ProjectID: project, Database: database}
}

// Name is the fully qualified resource name of the database.
func (d DatabaseID) Name() string {
	return fmt.Sprintf("projects/%s/databases/%s", d.ProjectID, d.Database)
}

// DocumentsRoot is the resource name every document name is relative to.
func (d DatabaseID) DocumentsRoot() string {
	return d.Name() + "/documents"
}

// ResourcePath is a slash separated path relative to the documents root.
type ResourcePath struct {
	segments []string
}

// ParsePath splits a relative path. Leading and trailing slashes are
// ignored; empty interior segments are rejected.
func ParsePath(path string) (ResourcePath, error) {
	path = strings.Trim(path, "/")
	if path == "" {
		return ResourcePath{}, nil
	}
	segments := strings.Split(path, "/")
	for _, s := range segments {
		if s == "" {
			return ResourcePath{}, fmt.Errorf("%w: %q", ErrEmptySegment, path)
		}
	}
	return ResourcePath{segments: segments}, nil
}

func NewPath(segments ...string) ResourcePath {
	out := make([]string, len(segments))
	copy(out, segments)
	return ResourcePath{segments: out}
}

func (p ResourcePath) Len() int { return len(p.segments) }

func (p ResourcePath) Segment(i int) string { return p.segments[i] }

func (p ResourcePath) Child(segment string) ResourcePath {
	out := make([]string, len(p.segments)+1)
	copy(out, p.segments)
	out[len(p.segments)] = segment
	return ResourcePath{segments: out}
}

func (p ResourcePath) String() string { return strings.Join(p.segments, "/") }

// Compare orders paths segment by segment; a prefix sorts first.
func (p ResourcePath) Compare(o ResourcePath) int {
	n := min(len(p.segments), len(o.segments))
	for i := 0; i < n; i++ {
		if c := strings.Compare(p.segments[i], o.segments[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(p.segments) < len(o.segments):
		return -1
	case len(p.segments) > len(o.segments):
		return 1
	default:
		return 0
	}
}

// DocumentKey identifies one document. Its path always has an even number
// of segments: collection/id pairs.
type DocumentKey struct {
	path ResourcePath
}

func NewDocumentKey(path ResourcePath) (DocumentKey, error) {
	if path.Len() == 0 {
		return DocumentKey{}, ErrEmptyPath
	}
	if path.Len()%2 != 0 {
		return DocumentKey{}, fmt.Errorf("%w: %q", ErrNotDocumentPath, path)
	}
	return DocumentKey{path: path}, nil
}

// ParseDocumentKey parses a relative document path such as "rooms/a".
func ParseDocumentKey(path string) (DocumentKey, error) {
	p, err := ParsePath(path)
	if err != nil {
		return DocumentKey{}, err
	}
	return NewDocumentKey(p)
}

// MustDocumentKey is ParseDocumentKey for keys known to be valid.
func MustDocumentKey(path string) DocumentKey {
	k, err := ParseDocumentKey(path)
	if err != nil {
		panic(err)
	}
	return k
}

func (k DocumentKey) Path() ResourcePath { return k.path }

// CollectionPath is the path of the collection holding the document.
func (k DocumentKey) CollectionPath() ResourcePath {
	return ResourcePath{segments: k.path.segments[:k.path.Len()-1]}
}

func (k DocumentKey) String() string { return k.path.String() }

func (k DocumentKey) Compare(o DocumentKey) int { return k.path.Compare(o.path) }

func (k DocumentKey) Equal(o DocumentKey) bool { return k.Compare(o) == 0 }
