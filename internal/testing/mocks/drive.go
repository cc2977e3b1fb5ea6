// Package mocks provides an in-memory remote.Service for tests.
package mocks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dl-alexandre/gdxfer/internal/remote"
	"github.com/dl-alexandre/gdxfer/internal/utils"
)

// RootID is the concrete id of the fake's root folder
const RootID = "root-folder-id"

// CallCounts records how often each method was invoked
type CallCounts struct {
	Get              int
	ListChildren     int
	Insert           int
	InsertPermission int
	Download         int
}

// Total sums every counter
func (c CallCounts) Total() int {
	return c.Get + c.ListChildren + c.Insert + c.InsertPermission + c.Download
}

// FakeDrive is an in-memory Drive tree. Listings return incomplete entries
// without parents, like the real adapter's narrow field mask.
type FakeDrive struct {
	mu          sync.Mutex
	entries     map[string]*remote.Entry
	content     map[string][]byte
	order       []string
	nextID      int
	Permissions map[string][]remote.Permission
	Calls       CallCounts

	// Optional hooks run before the default behaviour; a non-nil error is returned as-is.
	GetErr      func(id string) error
	DownloadErr func(id string) error
	InsertErr   func(f remote.NewFile) error
}

var _ remote.Service = (*FakeDrive)(nil)

// NewFakeDrive returns a fake holding only the root folder
func NewFakeDrive() *FakeDrive {
	d := &FakeDrive{
		entries:     map[string]*remote.Entry{},
		content:     map[string][]byte{},
		Permissions: map[string][]remote.Permission{},
	}
	d.entries[RootID] = &remote.Entry{
		Kind:     remote.KindFolder,
		ID:       RootID,
		Title:    "My Drive",
		MimeType: utils.MimeTypeFolder,
		Complete: true,
	}
	return d
}

func (d *FakeDrive) resolve(id string) string {
	if id == "" || id == utils.RootFolderID {
		return RootID
	}
	return id
}

func (d *FakeDrive) add(e *remote.Entry, parentID string) *remote.Entry {
	d.mu.Lock()
	defer d.mu.Unlock()

	parentID = d.resolve(parentID)
	e.Parents = []remote.ParentRef{{ID: parentID, IsRoot: parentID == RootID}}
	e.Complete = true
	d.entries[e.ID] = e
	d.order = append(d.order, e.ID)
	return e
}

// AddFolder creates a folder under parentID ("root" or "" for the root)
func (d *FakeDrive) AddFolder(id, title, parentID string) *remote.Entry {
	return d.add(&remote.Entry{
		Kind:     remote.KindFolder,
		ID:       id,
		Title:    title,
		MimeType: utils.MimeTypeFolder,
	}, parentID)
}

// AddFile creates a file with content under parentID
func (d *FakeDrive) AddFile(id, title, parentID, content string) *remote.Entry {
	e := d.add(&remote.Entry{
		Kind:     remote.KindFile,
		ID:       id,
		Title:    title,
		MimeType: "application/octet-stream",
		FileSize: int64(len(content)),
	}, parentID)
	d.mu.Lock()
	d.content[id] = []byte(content)
	d.mu.Unlock()
	return e
}

// AddParent appends another parent reference to id
func (d *FakeDrive) AddParent(id, parentID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	parentID = d.resolve(parentID)
	e := d.entries[id]
	e.Parents = append(e.Parents, remote.ParentRef{ID: parentID, IsRoot: parentID == RootID})
}

// ClearParents removes every parent of id, as for files shared with the user
func (d *FakeDrive) ClearParents(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[id].Parents = nil
}

// Trash marks id as trashed
func (d *FakeDrive) Trash(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[id].Trashed = true
}

// Content returns the stored bytes of id
func (d *FakeDrive) Content(id string) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.content[id]
}

// Entry returns a copy of the stored entry
func (d *FakeDrive) Entry(id string) (remote.Entry, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.entries[d.resolve(id)]
	if !ok {
		return remote.Entry{}, false
	}
	return *e, true
}

func notFound(id string) error {
	return utils.NewAppError(utils.NewCLIError(utils.ErrCodeFileNotFound, "File not found: "+id).
		WithHTTPStatus(404).
		WithDriveReason("notFound").
		Build())
}

func (d *FakeDrive) Get(ctx context.Context, id string) (*remote.Entry, error) {
	d.mu.Lock()
	d.Calls.Get++
	d.mu.Unlock()

	if d.GetErr != nil {
		if err := d.GetErr(id); err != nil {
			return nil, err
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.entries[d.resolve(id)]
	if !ok {
		return nil, notFound(id)
	}
	out := *e
	out.Parents = append([]remote.ParentRef(nil), e.Parents...)
	return &out, nil
}

func (d *FakeDrive) ListChildren(ctx context.Context, q remote.ListQuery) ([]*remote.Entry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls.ListChildren++

	parent := d.resolve(q.ParentID)
	var out []*remote.Entry
	for _, id := range d.order {
		e := d.entries[id]
		if e.Trashed && !q.IncludeTrashed {
			continue
		}
		for _, p := range e.Parents {
			if p.ID == parent {
				out = append(out, &remote.Entry{
					Kind:     e.Kind,
					ID:       e.ID,
					Title:    e.Title,
					MimeType: e.MimeType,
					Trashed:  e.Trashed,
				})
				break
			}
		}
	}
	return out, nil
}

func (d *FakeDrive) Insert(ctx context.Context, f remote.NewFile, media io.Reader) (*remote.Entry, error) {
	d.mu.Lock()
	d.Calls.Insert++
	d.mu.Unlock()

	if d.InsertErr != nil {
		if err := d.InsertErr(f); err != nil {
			return nil, err
		}
	}

	data, err := io.ReadAll(media)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}

	d.mu.Lock()
	d.nextID++
	id := fmt.Sprintf("uploaded-%d", d.nextID)
	d.mu.Unlock()

	e := d.AddFile(id, f.Title, f.ParentID, string(data))
	d.mu.Lock()
	defer d.mu.Unlock()
	if f.MimeType != "" {
		e.MimeType = f.MimeType
	}
	e.WebContentLink = "https://drive.google.com/uc?id=" + id + "&export=download"
	out := *e
	return &out, nil
}

func (d *FakeDrive) InsertPermission(ctx context.Context, id string, p remote.Permission) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls.InsertPermission++

	if _, ok := d.entries[id]; !ok {
		return notFound(id)
	}
	d.Permissions[id] = append(d.Permissions[id], p)
	return nil
}

func (d *FakeDrive) Download(ctx context.Context, id string, w io.Writer) (int64, error) {
	d.mu.Lock()
	d.Calls.Download++
	d.mu.Unlock()

	if d.DownloadErr != nil {
		if err := d.DownloadErr(id); err != nil {
			return 0, err
		}
	}

	d.mu.Lock()
	data, ok := d.content[id]
	d.mu.Unlock()
	if !ok {
		return 0, notFound(id)
	}
	n, err := w.Write(data)
	return int64(n), err
}
