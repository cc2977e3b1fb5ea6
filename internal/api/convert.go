package api

import (
	"google.golang.org/api/drive/v2"

	"github.com/dl-alexandre/gdxfer/internal/remote"
	"github.com/dl-alexandre/gdxfer/internal/utils"
)

// Field masks. Listings are narrow and yield incomplete entries.
const (
	entryFields = "id,title,mimeType,parents(id,isRoot),labels/trashed,fileSize,md5Checksum,downloadUrl,webContentLink"
	listFields  = "nextPageToken,items(id,title,mimeType,labels/trashed)"
)

// convertFile maps a drive/v2 File onto remote.Entry
func convertFile(f *drive.File, complete bool) *remote.Entry {
	if f == nil {
		return nil
	}
	e := &remote.Entry{
		ID:       f.Id,
		Title:    f.Title,
		MimeType: f.MimeType,
		Complete: complete,
	}
	if f.Labels != nil {
		e.Trashed = f.Labels.Trashed
	}
	for _, p := range f.Parents {
		if p == nil {
			continue
		}
		e.Parents = append(e.Parents, remote.ParentRef{ID: p.Id, IsRoot: p.IsRoot})
	}

	if utils.IsFolderMimeType(f.MimeType) {
		e.Kind = remote.KindFolder
		return e
	}
	e.Kind = remote.KindFile
	e.FileSize = f.FileSize
	e.MD5Checksum = f.Md5Checksum
	e.DownloadURL = f.DownloadUrl
	e.WebContentLink = f.WebContentLink
	return e
}

// toDriveFile builds the insert request body
func toDriveFile(nf remote.NewFile) *drive.File {
	f := &drive.File{
		Title:    nf.Title,
		MimeType: nf.MimeType,
	}
	if nf.ParentID != "" {
		f.Parents = []*drive.ParentReference{{
			Kind: utils.ParentLinkKind,
			Id:   nf.ParentID,
		}}
	}
	return f
}

func toDrivePermission(p remote.Permission) *drive.Permission {
	return &drive.Permission{
		Type:  p.Type,
		Value: p.Value,
		Role:  p.Role,
	}
}
