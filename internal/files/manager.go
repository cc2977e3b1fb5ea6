package files

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dl-alexandre/gdxfer/internal/logging"
	"github.com/dl-alexandre/gdxfer/internal/remote"
	"github.com/dl-alexandre/gdxfer/internal/resolver"
	"github.com/dl-alexandre/gdxfer/internal/utils"
	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
)

// Options configures a Manager
type Options struct {
	// OutputDir is the local directory downloads are placed under
	OutputDir string
	// Concurrency bounds parallel file downloads within one folder
	Concurrency int
	Printer     Printer
	Logger      logging.Logger
}

// Manager handles upload, listing and download
type Manager struct {
	svc         remote.Service
	outputDir   string
	concurrency int
	printer     Printer
	logger      logging.Logger
}

// NewManager creates a new file manager
func NewManager(svc remote.Service, opts Options) *Manager {
	m := &Manager{
		svc:         svc,
		outputDir:   opts.OutputDir,
		concurrency: opts.Concurrency,
		printer:     opts.Printer,
		logger:      opts.Logger,
	}
	if m.outputDir == "" {
		m.outputDir = "."
	}
	if m.concurrency < 1 {
		m.concurrency = 1
	}
	if m.printer == nil {
		m.printer = NewWriterPrinter(os.Stdout)
	}
	if m.logger == nil {
		m.logger = logging.NewNoOpLogger()
	}
	return m
}

// ListOptions configures file listing
type ListOptions struct {
	SkipPrint bool
	// IncludeFolders prints folder entries too; folders are always returned
	IncludeFolders bool
}

// Upload uploads localPath, shares it publicly and prints its id and link.
// A missing local file is reported on the printer and is not an error.
func (m *Manager) Upload(ctx context.Context, localPath string, parentID string) error {
	stat, err := os.Stat(localPath)
	if os.IsNotExist(err) {
		m.printer.Printf("Specified filename %s does not exist!\n", localPath)
		return nil
	}
	if err != nil {
		return localIOError("Failed to stat file", localPath, err)
	}
	if stat.IsDir() {
		return utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument,
			fmt.Sprintf("%s is a directory", localPath)).
			WithContext("path", localPath).
			Build())
	}

	file, err := os.Open(localPath)
	if err != nil {
		return localIOError("Failed to open file", localPath, err)
	}
	defer file.Close()

	meta := remote.NewFile{
		Title:    filepath.Base(localPath),
		ParentID: parentID,
	}
	created, err := m.svc.Insert(ctx, meta, file)
	if err != nil {
		return err
	}

	// The insert response is not guaranteed to carry the download link
	uploaded, err := m.svc.Get(ctx, created.ID)
	if err != nil {
		return err
	}

	if err := m.svc.InsertPermission(ctx, uploaded.ID, remote.Permission{
		Type:  utils.PermissionAnyone,
		Value: utils.PermissionAnyone,
		Role:  utils.RoleReader,
	}); err != nil {
		return err
	}

	m.logger.Info("Uploaded file",
		logging.F("path", localPath),
		logging.F("fileId", uploaded.ID),
		logging.F("size", humanize.Bytes(uint64(stat.Size()))),
	)

	m.printer.Printf("Get it with: %s\n", uploaded.ID)
	m.printer.Printf("URL: %s\n", uploaded.WebContentLink)
	return nil
}

// List lists the non-trashed children of parentID. Folders are skipped when
// printing unless opts.IncludeFolders is set, but are always returned.
func (m *Manager) List(ctx context.Context, parentID string, opts ListOptions) ([]*remote.Entry, error) {
	if parentID == "" {
		parentID = utils.RootFolderID
	}

	entries, err := m.svc.ListChildren(ctx, remote.ListQuery{ParentID: parentID})
	if err != nil {
		return nil, err
	}
	m.logger.Debug("Listed folder",
		logging.F("parentId", parentID),
		logging.F("count", len(entries)),
	)

	if !opts.SkipPrint {
		shown := make([]*remote.Entry, 0, len(entries))
		for _, e := range entries {
			if e.IsFolder() && !opts.IncludeFolders {
				continue
			}
			shown = append(shown, e)
		}
		m.printer.Listing(shown)
	}
	return entries, nil
}

// Download downloads id into the output directory. A folder is downloaded
// recursively, mirroring the remote tree below the drive root. The first
// error aborts the whole download.
func (m *Manager) Download(ctx context.Context, id string) error {
	root, err := m.svc.Get(ctx, id)
	if err != nil {
		return err
	}

	paths := resolver.NewAncestorResolver(m.svc)
	if !root.IsFolder() {
		return m.downloadFile(ctx, root, paths)
	}

	queue := []*remote.Entry{root}
	for len(queue) > 0 {
		folder := queue[0]
		queue = queue[1:]
		paths.Remember(folder)

		next, err := m.downloadFolder(ctx, folder, paths)
		if err != nil {
			return err
		}
		queue = append(queue, next...)
	}
	return nil
}

// downloadFolder downloads the files directly inside folder and returns its
// subfolders, fully fetched, in listing order.
func (m *Manager) downloadFolder(ctx context.Context, folder *remote.Entry, paths *resolver.AncestorResolver) ([]*remote.Entry, error) {
	m.printer.Printf("%s is a folder, downloading recursively\n", folder.Title)

	batch, err := m.List(ctx, folder.ID, ListOptions{SkipPrint: true, IncludeFolders: true})
	if err != nil {
		return nil, err
	}

	subfolders := make([]*remote.Entry, len(batch))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)
	for i, listed := range batch {
		g.Go(func() error {
			entry, err := m.complete(gctx, listed)
			if err != nil {
				return err
			}
			if entry.IsFolder() {
				subfolders[i] = entry
				return nil
			}
			return m.downloadFile(gctx, entry, paths)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	next := subfolders[:0]
	for _, f := range subfolders {
		if f != nil {
			next = append(next, f)
		}
	}
	return next, nil
}

// complete returns e itself when it carries full metadata, otherwise a fresh fetch
func (m *Manager) complete(ctx context.Context, e *remote.Entry) (*remote.Entry, error) {
	if e.Complete {
		return e, nil
	}
	return m.svc.Get(ctx, e.ID)
}

func (m *Manager) downloadFile(ctx context.Context, e *remote.Entry, paths *resolver.AncestorResolver) error {
	rel, err := paths.Dir(ctx, e)
	if err != nil {
		return err
	}
	dir := filepath.Join(m.outputDir, rel)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return localIOError("Failed to create directory", dir, err)
	}

	target := filepath.Join(dir, e.Title)
	m.printer.Printf("Downloading %s -> %s\n", target, target)

	n, err := m.writeContent(ctx, e.ID, target)
	if err != nil {
		return err
	}

	m.logger.Debug("Downloaded file",
		logging.F("fileId", e.ID),
		logging.F("path", target),
		logging.F("size", humanize.Bytes(uint64(n))),
	)
	m.printer.Printf("Downloaded %s!\n", target)
	return nil
}

func (m *Manager) writeContent(ctx context.Context, id, target string) (int64, error) {
	out, err := os.Create(target)
	if err != nil {
		return 0, localIOError("Failed to create output file", target, err)
	}

	n, err := m.svc.Download(ctx, id, out)
	closeErr := out.Close()
	if err != nil {
		os.Remove(target)
		return 0, err
	}
	if closeErr != nil {
		return 0, localIOError("Failed to write output file", target, closeErr)
	}
	return n, nil
}

func localIOError(msg, path string, err error) error {
	return utils.NewAppError(utils.NewCLIError(utils.ErrCodeLocalIO,
		fmt.Sprintf("%s: %s", msg, err)).
		WithContext("path", path).
		Build())
}
