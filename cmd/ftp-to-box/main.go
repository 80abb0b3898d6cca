package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nwca/sanmar-adapters/internal/bootstrap"
	"github.com/nwca/sanmar-adapters/internal/ftpbox"
	"github.com/nwca/sanmar-adapters/pkg/config"
	"github.com/nwca/sanmar-adapters/pkg/logger"
	"github.com/nwca/sanmar-adapters/pkg/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	fb := cfg.FTPBox

	logger.Init("ftp-to-box", cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.S()
	logg.Infow("starting [ftp-to-box]...",
		"ftp_host", fb.FTPHost,
		"ftp_user", fb.FTPUser,
		"ftp_password", utils.MaskSecret(fb.FTPPassword),
		"box_folder", fb.BoxFolderID)

	if fb.FTPUser == "" || fb.FTPPassword == "" {
		logg.Fatal("SANMAR_FTP_USERNAME and SANMAR_FTP_PASSWORD are required")
	}
	if fb.BoxClientID == "" || fb.BoxSecret == "" || fb.BoxEnterprise == "" {
		logg.Fatal("BOX_CLIENT_ID, BOX_CLIENT_SECRET and BOX_ENTERPRISE_ID are required")
	}
	if err := os.MkdirAll(fb.WorkDir, 0o755); err != nil {
		logg.Fatalw("failed to create work dir", "error", err, "dir", fb.WorkDir)
	}

	pub, nc, err := bootstrap.Publisher(logg.Desugar(), cfg)
	if err != nil {
		logg.Fatalw("failed to init publisher", "error", err, "broker", cfg.EventBroker)
	}
	defer func() {
		if nc != nil {
			_ = nc.Drain()
			return
		}
		pub.Close()
	}()

	downloader := ftpbox.NewDownloader(logg.Desugar(), ftpbox.FTPConfig{
		Host:     fb.FTPHost,
		Port:     fb.FTPPort,
		User:     fb.FTPUser,
		Password: fb.FTPPassword,
		Dir:      fb.FTPDir,
		File:     fb.FTPFile,
		Timeout:  fb.FTPTimeout,
	})
	box := ftpbox.NewBoxClient(logg.Desugar(), ftpbox.BoxConfig{
		ClientID:     fb.BoxClientID,
		ClientSecret: fb.BoxSecret,
		EnterpriseID: fb.BoxEnterprise,
		FolderID:     fb.BoxFolderID,
	}, 5*time.Minute)

	upload, err := ftpbox.NewPipeline(logg.Desugar(), downloader, box, pub, fb.WorkDir, "ftp-to-box").Run(ctx)
	if err != nil {
		logg.Fatalw("ftp-to-box failed", "error", err)
	}

	logg.Infow("[ftp-to-box] completed",
		"file_id", upload.FileID,
		"file", upload.FileName,
		"rows", upload.Rows,
		"shared_link", upload.SharedLink)
}
