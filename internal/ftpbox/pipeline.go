package ftpbox

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/nwca/sanmar-adapters/internal/publisher"
	"github.com/nwca/sanmar-adapters/pkg/model"
)

// Fetcher downloads the raw feed.
type Fetcher interface {
	Download(ctx context.Context, w io.Writer) (int64, error)
}

// Uploader stores the converted feed.
type Uploader interface {
	Upload(ctx context.Context, name string, content io.Reader) (string, error)
	SharedLink(ctx context.Context, fileID string) (string, error)
}

// Pipeline moves the SanMar feed from FTP to Box as CSV.
type Pipeline struct {
	logger  *zap.Logger
	fetcher Fetcher
	up      Uploader
	pub     publisher.EventPublisher
	workDir string
	source  string
	now     func() time.Time
}

func NewPipeline(logger *zap.Logger, fetcher Fetcher, up Uploader, pub publisher.EventPublisher, workDir, source string) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pub == nil {
		pub = publisher.Nop{}
	}
	return &Pipeline{logger: logger, fetcher: fetcher, up: up, pub: pub, workDir: workDir, source: source, now: time.Now}
}

// Run downloads, converts and uploads the feed. Intermediate files live in a
// temporary directory under workDir and are removed afterwards.
func (p *Pipeline) Run(ctx context.Context) (*model.FeedUpload, error) {
	if p.workDir != "" {
		if err := os.MkdirAll(p.workDir, 0o755); err != nil {
			return nil, fmt.Errorf("create work dir: %w", err)
		}
	}
	dir, err := os.MkdirTemp(p.workDir, "sanmar-feed-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir) //nolint:errcheck

	stamp := p.now().Format("20060102_150405")
	rawPath := filepath.Join(dir, "sanmar_inventory_"+stamp+".dip")
	name := "sanmar_inventory_" + stamp + ".csv"
	csvPath := filepath.Join(dir, name)

	if err := p.download(ctx, rawPath); err != nil {
		return nil, err
	}
	rows, err := convertFile(rawPath, csvPath)
	if err != nil {
		return nil, err
	}
	p.logger.Info("ftpbox.converted", zap.String("file", name), zap.Int("rows", rows))

	f, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck

	fileID, err := p.up.Upload(ctx, name, f)
	if err != nil {
		return nil, err
	}
	result := &model.FeedUpload{FileID: fileID, FileName: name, Rows: rows, UploadedAt: p.now().UTC()}

	link, err := p.up.SharedLink(ctx, fileID)
	if err != nil {
		p.logger.Warn("ftpbox.shared_link_failed", zap.String("file_id", fileID), zap.Error(err))
	} else {
		result.SharedLink = link
	}

	if err := publisher.Emit(ctx, p.pub, model.SubjectFeedUploaded, "catalog.feed.uploaded", p.source, result); err != nil {
		p.logger.Warn("ftpbox.publish_failed", zap.Error(err))
	}
	return result, nil
}

func (p *Pipeline) download(ctx context.Context, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := p.fetcher.Download(ctx, f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func convertFile(src, dst string) (int, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close() //nolint:errcheck

	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	rows, err := ConvertPipeToCSV(in, out)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return rows, fmt.Errorf("convert feed: %w", err)
	}
	return rows, nil
}
