package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"google.golang.org/api/drive/v2"
	"google.golang.org/api/googleapi"

	"github.com/dl-alexandre/gdxfer/internal/logging"
	"github.com/dl-alexandre/gdxfer/internal/remote"
	"github.com/dl-alexandre/gdxfer/internal/types"
	"github.com/dl-alexandre/gdxfer/internal/utils"
)

var _ remote.Service = (*Client)(nil)

// Get fetches full metadata for a file or folder
func (c *Client) Get(ctx context.Context, id string) (*remote.Entry, error) {
	reqCtx := WithFileIDs(NewRequestContext(types.RequestTypeGetByID), id)

	f, err := ExecuteWithRetry(ctx, c, reqCtx, func() (*drive.File, error) {
		return c.service.Files.Get(id).
			Fields(googleapi.Field(entryFields)).
			Context(ctx).
			Do()
	})
	if err != nil {
		return nil, err
	}
	return convertFile(f, true), nil
}

// childrenQuery builds the v2 search expression for one folder
func childrenQuery(q remote.ListQuery) string {
	parent := q.ParentID
	if parent == "" {
		parent = utils.RootFolderID
	}
	// single quotes inside ids must be escaped in query strings
	parent = strings.ReplaceAll(parent, `'`, `\'`)
	query := fmt.Sprintf("'%s' in parents", parent)
	if !q.IncludeTrashed {
		query += " and trashed=false"
	}
	return query
}

// ListChildren runs one logical query and drains every page
func (c *Client) ListChildren(ctx context.Context, q remote.ListQuery) ([]*remote.Entry, error) {
	reqCtx := WithParentIDs(NewRequestContext(types.RequestTypeListOrSearch), q.ParentID)
	query := childrenQuery(q)
	logger := c.logger.WithTraceID(reqCtx.TraceID)

	var entries []*remote.Entry
	pageToken := ""
	for page := 1; ; page++ {
		list, err := ExecuteWithRetry(ctx, c, reqCtx, func() (*drive.FileList, error) {
			call := c.service.Files.List().
				Q(query).
				MaxResults(c.pageSize).
				Fields(googleapi.Field(listFields)).
				Context(ctx)
			if pageToken != "" {
				call = call.PageToken(pageToken)
			}
			return call.Do()
		})
		if err != nil {
			return nil, err
		}

		for _, f := range list.Items {
			entries = append(entries, convertFile(f, false))
		}
		logger.Debug("Listed page",
			logging.F("query", query),
			logging.F("page", page),
			logging.F("items", len(list.Items)),
		)

		if list.NextPageToken == "" {
			return entries, nil
		}
		pageToken = list.NextPageToken
	}
}

// Insert uploads media as a new file. When media is seekable it is rewound
// before each retry.
func (c *Client) Insert(ctx context.Context, nf remote.NewFile, media io.Reader) (*remote.Entry, error) {
	reqCtx := NewRequestContext(types.RequestTypeMutation)
	if nf.ParentID != "" {
		WithParentIDs(reqCtx, nf.ParentID)
	}

	seeker, seekable := media.(io.Seeker)
	attempt := 0
	f, err := ExecuteWithRetry(ctx, c, reqCtx, func() (*drive.File, error) {
		if attempt > 0 {
			if !seekable {
				return nil, fmt.Errorf("cannot retry upload of %s: content is not seekable", nf.Title)
			}
			if _, err := seeker.Seek(0, io.SeekStart); err != nil {
				return nil, fmt.Errorf("rewinding upload content: %w", err)
			}
		}
		attempt++
		return c.service.Files.Insert(toDriveFile(nf)).
			Media(media).
			Fields(googleapi.Field(entryFields)).
			Context(ctx).
			Do()
	})
	if err != nil {
		return nil, err
	}
	return convertFile(f, true), nil
}

// InsertPermission adds a sharing permission without notification emails
func (c *Client) InsertPermission(ctx context.Context, id string, p remote.Permission) error {
	reqCtx := WithFileIDs(NewRequestContext(types.RequestTypePermissionOp), id)

	_, err := ExecuteWithRetry(ctx, c, reqCtx, func() (*drive.Permission, error) {
		return c.service.Permissions.Insert(id, toDrivePermission(p)).
			SendNotificationEmails(false).
			Context(ctx).
			Do()
	})
	return err
}

// Download streams the content of id into w
func (c *Client) Download(ctx context.Context, id string, w io.Writer) (int64, error) {
	reqCtx := WithFileIDs(NewRequestContext(types.RequestTypeDownloadOrExport), id)

	resp, err := ExecuteWithRetry(ctx, c, reqCtx, func() (*http.Response, error) {
		return c.service.Files.Get(id).Context(ctx).Download()
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, classifyError(fmt.Errorf("reading content of %s: %w", id, err), reqCtx, c.logger)
	}
	return n, nil
}
