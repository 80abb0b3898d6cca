package ftpbox

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/jlaffaye/ftp"
	"go.uber.org/zap"
)

// FTPConfig locates the SanMar inventory feed.
type FTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Dir      string
	File     string
	Timeout  time.Duration
}

// ftpConn is the part of *ftp.ServerConn the downloader uses.
type ftpConn interface {
	Login(user, password string) error
	ChangeDir(path string) error
	Retr(path string) (io.ReadCloser, error)
	Quit() error
}

type serverConn struct{ *ftp.ServerConn }

func (c serverConn) Retr(path string) (io.ReadCloser, error) { return c.ServerConn.Retr(path) }

func dialFTP(ctx context.Context, addr string, timeout time.Duration) (ftpConn, error) {
	c, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(timeout))
	if err != nil {
		return nil, err
	}
	return serverConn{c}, nil
}

// Downloader fetches the feed file over FTP.
type Downloader struct {
	logger *zap.Logger
	cfg    FTPConfig
	dial   func(ctx context.Context, addr string, timeout time.Duration) (ftpConn, error)
}

func NewDownloader(logger *zap.Logger, cfg FTPConfig) *Downloader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Port == 0 {
		cfg.Port = 21
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}
	return &Downloader{logger: logger, cfg: cfg, dial: dialFTP}
}

// Download streams the configured file into w and returns the byte count.
func (d *Downloader) Download(ctx context.Context, w io.Writer) (int64, error) {
	addr := net.JoinHostPort(d.cfg.Host, strconv.Itoa(d.cfg.Port))
	d.logger.Info("ftpbox.ftp_connect", zap.String("addr", addr))

	conn, err := d.dial(ctx, addr, d.cfg.Timeout)
	if err != nil {
		return 0, fmt.Errorf("ftp dial %s: %w", addr, err)
	}
	defer conn.Quit() //nolint:errcheck

	if err := conn.Login(d.cfg.User, d.cfg.Password); err != nil {
		return 0, fmt.Errorf("ftp login: %w", err)
	}
	if d.cfg.Dir != "" && d.cfg.Dir != "/" {
		if err := conn.ChangeDir(d.cfg.Dir); err != nil {
			return 0, fmt.Errorf("ftp cwd %s: %w", d.cfg.Dir, err)
		}
	}

	r, err := conn.Retr(d.cfg.File)
	if err != nil {
		return 0, fmt.Errorf("ftp retr %s: %w", d.cfg.File, err)
	}
	n, err := io.Copy(w, r)
	closeErr := r.Close()
	if err != nil {
		return n, fmt.Errorf("ftp read %s: %w", d.cfg.File, err)
	}
	if closeErr != nil {
		return n, fmt.Errorf("ftp close %s: %w", d.cfg.File, closeErr)
	}

	d.logger.Info("ftpbox.ftp_downloaded", zap.String("file", d.cfg.File), zap.Int64("bytes", n))
	return n, nil
}
