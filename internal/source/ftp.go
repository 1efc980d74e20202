package source

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/jlaffaye/ftp"
)

// FTP retrieves the export from an FTP server, anonymously unless the URL
// carries credentials.
type FTP struct {
	Addr     string
	Path     string
	User     string
	Password string
	Timeout  time.Duration
}

func NewFTP(u *url.URL) *FTP {
	f := &FTP{
		Addr:     u.Host,
		Path:     u.Path,
		User:     "anonymous",
		Password: "anonymous",
		Timeout:  30 * time.Second,
	}
	if u.Port() == "" {
		f.Addr = u.Host + ":21"
	}
	if u.User != nil {
		f.User = u.User.Username()
		f.Password, _ = u.User.Password()
	}
	return f
}

func (f *FTP) Scheme() string { return "ftp" }

func (f *FTP) String() string { return "ftp://" + f.Addr + f.Path }

func (f *FTP) Open(ctx context.Context) (rc io.ReadCloser, err error) {
	start := time.Now()
	defer func() { observe("ftp", start, err) }()

	conn, err := ftp.Dial(f.Addr, ftp.DialWithTimeout(f.Timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("ftp dial: %w", err)
	}
	if err := conn.Login(f.User, f.Password); err != nil {
		conn.Quit()
		return nil, fmt.Errorf("ftp login: %w", err)
	}
	resp, err := conn.Retr(f.Path)
	if err != nil {
		conn.Quit()
		return nil, fmt.Errorf("ftp retr: %w", err)
	}
	return &ftpBody{resp: resp, conn: conn}, nil
}

// ftpBody closes the data connection before quitting the control one.
type ftpBody struct {
	resp *ftp.Response
	conn *ftp.ServerConn
}

func (b *ftpBody) Read(p []byte) (int, error) { return b.resp.Read(p) }

func (b *ftpBody) Close() error {
	err := b.resp.Close()
	if qerr := b.conn.Quit(); err == nil {
		err = qerr
	}
	return err
}
