// Package source fetches sensor logs from local files, HTTP servers and the
// FTP drops that field loggers upload to.
package source

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/lox/airsense/internal/httputil"
)

const (
	ftpTimeout     = 30 * time.Second
	ftpDefaultPort = "21"
)

// Payload is a fetched log file.
type Payload struct {
	Name string
	Data []byte
}

// Fetch retrieves the log at location, which is an ftp:// or http(s):// URL
// or a local file path.
func Fetch(ctx context.Context, location string) (*Payload, error) {
	u, err := url.Parse(location)
	if err == nil {
		switch strings.ToLower(u.Scheme) {
		case "ftp":
			return fetchFTP(ctx, u)
		case "http", "https":
			return fetchHTTP(ctx, u)
		}
	}
	return fetchFile(location)
}

func fetchFile(p string) (*Payload, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	data, err := httputil.ReadLimited(f, httputil.MaxLogSize)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return &Payload{Name: filepath.Base(p), Data: data}, nil
}

func fetchHTTP(ctx context.Context, u *url.URL) (*Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := httputil.NewClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u.Redacted(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", u.Redacted(), resp.StatusCode)
	}

	data, err := httputil.ReadLimited(resp.Body, httputil.MaxLogSize)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return &Payload{Name: path.Base(u.Path), Data: data}, nil
}

// ftpTarget is the connection details of an ftp:// URL.
type ftpTarget struct {
	Addr     string
	User     string
	Password string
	Path     string
}

// newFTPTarget fills in the default port and anonymous credentials.
func newFTPTarget(u *url.URL) ftpTarget {
	t := ftpTarget{
		Addr:     u.Host,
		User:     "anonymous",
		Password: "anonymous",
		Path:     u.Path,
	}
	if u.Port() == "" {
		t.Addr = net.JoinHostPort(u.Hostname(), ftpDefaultPort)
	}
	if u.User != nil {
		t.User = u.User.Username()
		if p, ok := u.User.Password(); ok {
			t.Password = p
		}
	}
	return t
}

func fetchFTP(ctx context.Context, u *url.URL) (*Payload, error) {
	target := newFTPTarget(u)

	conn, err := ftp.Dial(target.Addr, ftp.DialWithTimeout(ftpTimeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("ftp dial: %w", err)
	}
	defer conn.Quit()

	if err := conn.Login(target.User, target.Password); err != nil {
		return nil, fmt.Errorf("ftp login: %w", err)
	}

	resp, err := conn.Retr(target.Path)
	if err != nil {
		return nil, fmt.Errorf("ftp retrieve %s: %w", target.Path, err)
	}
	defer resp.Close()

	data, err := httputil.ReadLimited(resp, httputil.MaxLogSize)
	if err != nil {
		return nil, fmt.Errorf("read ftp file: %w", err)
	}
	return &Payload{Name: path.Base(target.Path), Data: data}, nil
}
