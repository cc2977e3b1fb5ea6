// Package remote defines the Drive entry model and the narrow service
// surface the file operations are written against.
package remote

import (
	"context"
	"io"
)

// Kind discriminates files from folders
type Kind int

const (
	KindFile Kind = iota
	KindFolder
)

func (k Kind) String() string {
	if k == KindFolder {
		return "folder"
	}
	return "file"
}

// ParentRef is one entry of a file's parents collection
type ParentRef struct {
	ID     string
	IsRoot bool
}

// Entry is the metadata of a remote file or folder.
// File-only fields are zero for folders.
type Entry struct {
	Kind     Kind
	ID       string
	Title    string
	MimeType string
	Parents  []ParentRef
	Trashed  bool

	// Complete is false when the entry came from a listing with a narrow field mask.
	Complete bool

	FileSize       int64
	MD5Checksum    string
	DownloadURL    string
	WebContentLink string
}

// IsFolder reports whether e is a folder
func (e *Entry) IsFolder() bool {
	return e.Kind == KindFolder
}

// FirstParent returns the first parent reference, if any
func (e *Entry) FirstParent() (ParentRef, bool) {
	if len(e.Parents) == 0 {
		return ParentRef{}, false
	}
	return e.Parents[0], true
}

// NewFile describes a file to be inserted
type NewFile struct {
	Title    string
	MimeType string
	// ParentID is optional; empty places the file in the root folder
	ParentID string
}

// Permission is a sharing grant
type Permission struct {
	Type  string
	Value string
	Role  string
}

// ListQuery selects the children of one folder
type ListQuery struct {
	ParentID       string
	IncludeTrashed bool
}

// Service is the subset of Drive the file operations need
type Service interface {
	// Get fetches full metadata for id
	Get(ctx context.Context, id string) (*Entry, error)
	// ListChildren returns every child matching q, following page tokens
	ListChildren(ctx context.Context, q ListQuery) ([]*Entry, error)
	// Insert creates a file with content read from media
	Insert(ctx context.Context, f NewFile, media io.Reader) (*Entry, error)
	// InsertPermission grants p on id
	InsertPermission(ctx context.Context, id string, p Permission) error
	// Download streams the content of id to w and returns the bytes written
	Download(ctx context.Context, id string, w io.Writer) (int64, error)
}
