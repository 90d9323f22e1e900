// Package publish archives the generated docs, uploads and copies them, and writes the
// Markdown summary report.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"git.home.luguber.info/inful/autodocs/internal/archive"
	"git.home.luguber.info/inful/autodocs/internal/config"
	aerrors "git.home.luguber.info/inful/autodocs/internal/errors"
	"git.home.luguber.info/inful/autodocs/internal/logfields"
	"git.home.luguber.info/inful/autodocs/internal/retry"
	"git.home.luguber.info/inful/autodocs/internal/storage"
	"git.home.luguber.info/inful/autodocs/internal/summarize"
)

// Input is what a publish run consumes.
type Input struct {
	Config *config.BuildConfig
	// Tree is the generated output directory to archive and copy.
	Tree   string
	Report *summarize.Report
}

// Output lists the artifacts a publish run produced.
type Output struct {
	ArchivePath    string
	URL            string
	ReportPath     string
	ReportHTMLPath string
	LatestDir      string
	VersionedDir   string
}

// Publisher runs the publish stage. A nil store disables upload.
type Publisher struct {
	store storage.BlobStore
	sleep retry.Sleeper
}

// New returns a publisher uploading to store (nil for no upload).
func New(store storage.BlobStore) *Publisher {
	return &Publisher{store: store, sleep: retry.ContextSleep}
}

// WithSleeper replaces the backoff sleeper between store attempts.
func (p *Publisher) WithSleeper(s retry.Sleeper) *Publisher {
	p.sleep = s
	return p
}

// Publish archives the tree, optionally uploads the archive, optionally replaces the
// latest and versioned copies, and always writes the report.
func (p *Publisher) Publish(ctx context.Context, in Input) (*Output, error) {
	cfg := in.Config
	out := &Output{ReportPath: cfg.Paths.ReportPath}

	info, err := archive.ZipDir(in.Tree, cfg.Paths.ArchivePath)
	if err != nil {
		return nil, aerrors.FileSystemError("archive", cfg.Paths.ArchivePath, err)
	}
	out.ArchivePath = info.Path
	slog.Info("Archived documentation",
		logfields.Path(info.Path),
		logfields.Count(info.Files),
		slog.Int64("bytes", info.Size))

	if p.store != nil {
		url, err := p.upload(ctx, cfg.Publish, info.Path)
		if err != nil {
			return nil, err
		}
		out.URL = url
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.Publish.LocalCopy {
		if err := ReplaceDir(in.Tree, cfg.Paths.LatestDir); err != nil {
			return nil, aerrors.FileSystemError("copy", cfg.Paths.LatestDir, err)
		}
		out.LatestDir = cfg.Paths.LatestDir
		if cfg.Publish.Versioned {
			if err := ReplaceDir(in.Tree, cfg.Paths.VersionedDir); err != nil {
				return nil, aerrors.FileSystemError("copy", cfg.Paths.VersionedDir, err)
			}
			out.VersionedDir = cfg.Paths.VersionedDir
		}
		slog.Info("Copied documentation",
			logfields.Path(cfg.Paths.LatestDir),
			logfields.Version(cfg.Version.Tag))
	}

	var sections []summarize.Section
	if in.Report != nil {
		sections = in.Report.Sections()
	}
	md := RenderMarkdown(ReportData{
		VersionTag:  cfg.Version.Tag,
		Versioned:   cfg.Publish.Versioned,
		DocsKind:    docsKind(cfg),
		LocalDocs:   localDocsLink(cfg, out),
		DownloadURL: out.URL,
		Sections:    sections,
	})
	if err := writeFileAtomic(cfg.Paths.ReportPath, []byte(md)); err != nil {
		return nil, aerrors.FileSystemError("write", cfg.Paths.ReportPath, err)
	}
	slog.Info("Wrote summary report", logfields.Path(cfg.Paths.ReportPath))

	if cfg.Publish.ReportHTML {
		page, err := RenderHTML(md)
		if err != nil {
			return nil, aerrors.InternalError("render report html", err)
		}
		htmlPath := strings.TrimSuffix(cfg.Paths.ReportPath, filepath.Ext(cfg.Paths.ReportPath)) + ".html"
		if err := writeFileAtomic(htmlPath, page); err != nil {
			return nil, aerrors.FileSystemError("write", htmlPath, err)
		}
		out.ReportHTMLPath = htmlPath
	}
	return out, nil
}

func (p *Publisher) upload(ctx context.Context, pc config.PublishConfig, archivePath string) (string, error) {
	blobName := pc.BlobName
	policy := retry.FromConfig(pc.Retry)

	err := p.withRetry(ctx, policy, pc.Timeout, "create_container", func(ctx context.Context) error {
		return p.store.CreateContainer(ctx)
	})
	if err != nil {
		return "", aerrors.StorageFailed("create_container", err, isTransientStoreError(ctx, err)).
			WithContext("container", p.store.Container())
	}

	contentType := "application/zip"
	if mt, err := mimetype.DetectFile(archivePath); err == nil {
		contentType = mt.String()
	}

	f, err := os.Open(filepath.Clean(archivePath))
	if err != nil {
		return "", aerrors.FileSystemError("open", archivePath, err)
	}
	defer func() {
		_ = f.Close()
	}()

	opts := storage.UploadOptions{Overwrite: true, ContentType: contentType}
	err = p.withRetry(ctx, policy, pc.Timeout, "upload", func(ctx context.Context) error {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return err
		}
		return p.store.Upload(ctx, blobName, f, opts)
	})
	if err != nil {
		return "", aerrors.StorageFailed("upload", err, isTransientStoreError(ctx, err)).
			WithContext("container", p.store.Container()).
			WithContext("blob", blobName)
	}
	url := p.store.URL(blobName)
	slog.Info("Uploaded archive",
		logfields.Container(p.store.Container()),
		logfields.Blob(blobName),
		logfields.URL(url))
	return url, nil
}

// withRetry runs fn under policy, giving each attempt its own deadline when timeout > 0.
func (p *Publisher) withRetry(ctx context.Context, policy retry.Policy, timeout time.Duration, op string, fn func(ctx context.Context) error) error {
	shouldRetry := func(err error) bool { return isTransientStoreError(ctx, err) }
	return retry.Do(ctx, policy, p.sleep, shouldRetry, func(ctx context.Context, attempt int) error {
		attemptCtx := ctx
		if timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		err := fn(attemptCtx)
		if err != nil {
			slog.Warn("Blob store call failed",
				slog.String("operation", op),
				logfields.Attempt(attempt),
				logfields.Error(err))
		}
		return err
	})
}

// isTransientStoreError reports whether another attempt could succeed. A blob conflict
// and a cancelled run are final; per-attempt deadlines and other store errors are not.
func isTransientStoreError(ctx context.Context, err error) bool {
	if errors.Is(err, storage.ErrBlobExists) {
		return false
	}
	return ctx.Err() == nil
}

// docsKind names the format of the copied tree.
func docsKind(cfg *config.BuildConfig) string {
	if cfg.Features.GenerateHTML {
		return "HTML"
	}
	return "XML"
}

// localDocsLink points at the entry page of the versioned copy when one was made, else
// at latest. XML-only trees link their index.xml.
func localDocsLink(cfg *config.BuildConfig, out *Output) string {
	entry := "index.html"
	if !cfg.Features.GenerateHTML {
		entry = "index.xml"
	}
	switch {
	case out.VersionedDir != "":
		return fmt.Sprintf("/%s/%s/%s", config.DocsDirName, cfg.Version.Tag, entry)
	case out.LatestDir != "":
		return fmt.Sprintf("/%s/%s/%s", config.DocsDirName, config.LatestDirName, entry)
	default:
		return ""
	}
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
