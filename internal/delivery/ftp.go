// Package delivery sends finished exports to the fulfillment partner.
package delivery

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jlaffaye/ftp"
	"go.uber.org/zap"
)

// Options configures the FTP target.
type Options struct {
	Address  string
	Username string
	Password string
	Dir      string
	Timeout  time.Duration
}

// conn is the subset of *ftp.ServerConn used for an upload.
type conn interface {
	Login(user, password string) error
	ChangeDir(path string) error
	Stor(path string, r io.Reader) error
	Quit() error
}

type dialFunc func(ctx context.Context, addr string, timeout time.Duration) (conn, error)

func dialFTP(ctx context.Context, addr string, timeout time.Duration) (conn, error) {
	return ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(timeout))
}

// FTPUploader stores files on an FTP server.
type FTPUploader struct {
	opts Options
	dial dialFunc
	log  *zap.Logger
}

// NewFTPUploader creates an uploader for opts.
func NewFTPUploader(opts Options, log *zap.Logger) *FTPUploader {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &FTPUploader{opts: opts, dial: dialFTP, log: log}
}

// Upload stores localPath in the configured directory under its base name.
func (u *FTPUploader) Upload(ctx context.Context, localPath string) (err error) {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer file.Close()

	c, err := u.dial(ctx, u.opts.Address, u.opts.Timeout)
	if err != nil {
		return fmt.Errorf("dial %s: %w", u.opts.Address, err)
	}
	defer func() {
		if quitErr := c.Quit(); quitErr != nil && err == nil {
			err = fmt.Errorf("quit: %w", quitErr)
		}
	}()

	if err := c.Login(u.opts.Username, u.opts.Password); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if u.opts.Dir != "" {
		if err := c.ChangeDir(u.opts.Dir); err != nil {
			return fmt.Errorf("change dir %s: %w", u.opts.Dir, err)
		}
	}

	name := filepath.Base(localPath)
	if err := c.Stor(name, file); err != nil {
		return fmt.Errorf("store %s: %w", name, err)
	}

	u.log.Info("file delivered",
		zap.String("file", localPath),
		zap.String("server", u.opts.Address),
		zap.String("dir", u.opts.Dir))
	return nil
}
