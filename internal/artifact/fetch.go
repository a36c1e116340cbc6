// Package artifact retrieves persisted model artifacts from local disk, an
// HTTP(S) endpoint or an FTP server.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jlaffaye/ftp"

	"github.com/lox/homeenergy/internal/httputil"
	"github.com/lox/homeenergy/internal/metrics"
)

// MaxSize bounds the size of an artifact read from any source.
const MaxSize = 64 << 20

var ErrUnsupportedSource = errors.New("unsupported artifact source")

type Fetcher struct {
	client     *http.Client
	newBackOff func() backoff.BackOff
	ftpTimeout time.Duration
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		client: httputil.NewClient(0),
		newBackOff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.MaxElapsedTime = 2 * time.Minute
			return bo
		},
		ftpTimeout: 30 * time.Second,
	}
}

// Fetch returns the raw artifact bytes named by src. A plain path or
// file:// URL is read from disk, http(s):// is fetched with retries and
// ftp:// is retrieved with an anonymous login unless credentials are given
// in the URL.
func (f *Fetcher) Fetch(ctx context.Context, src string) ([]byte, error) {
	u, err := url.Parse(src)
	if err != nil || u.Scheme == "" {
		return f.fetchFile(src)
	}

	switch u.Scheme {
	case "file":
		return f.fetchFile(u.Path)
	case "http", "https":
		return f.fetchHTTP(ctx, u)
	case "ftp":
		return f.fetchFTP(ctx, u)
	default:
		return nil, fmt.Errorf("%w: scheme %q", ErrUnsupportedSource, u.Scheme)
	}
}

// Format returns "yaml" for .yaml/.yml sources and "json" otherwise.
func Format(src string) string {
	p := src
	if u, err := url.Parse(src); err == nil && u.Scheme != "" {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

func (f *Fetcher) fetchFile(p string) ([]byte, error) {
	file, err := os.Open(p)
	if err != nil {
		metrics.ArtifactFetches.WithLabelValues("file", "error").Inc()
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	defer file.Close()

	body, err := readLimited(file)
	if err != nil {
		metrics.ArtifactFetches.WithLabelValues("file", "error").Inc()
		return nil, err
	}
	metrics.ArtifactFetches.WithLabelValues("file", "ok").Inc()
	return body, nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, u *url.URL) ([]byte, error) {
	var body []byte
	operation := func() error {
		req, err := httputil.NewRequest(ctx, u.String())
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build request: %w", err))
		}

		resp, err := f.client.Do(req)
		if err != nil {
			metrics.ArtifactFetches.WithLabelValues(u.Scheme, "error").Inc()
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("fetch artifact: %w", err)
		}
		defer resp.Body.Close()
		metrics.ArtifactFetches.WithLabelValues(u.Scheme, strconv.Itoa(resp.StatusCode)).Inc()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("fetch artifact: status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return backoff.Permanent(fmt.Errorf("fetch artifact: status %d: %s", resp.StatusCode, strings.TrimSpace(string(b))))
		}

		body, err = readLimited(resp.Body)
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(f.newBackOff(), ctx)); err != nil {
		return nil, err
	}
	return body, nil
}

func (f *Fetcher) fetchFTP(ctx context.Context, u *url.URL) ([]byte, error) {
	addr, user, pass, file := ftpTarget(u)

	conn, err := ftp.Dial(addr, ftp.DialWithTimeout(f.ftpTimeout), ftp.DialWithContext(ctx))
	if err != nil {
		metrics.ArtifactFetches.WithLabelValues("ftp", "error").Inc()
		return nil, fmt.Errorf("ftp dial: %w", err)
	}
	defer conn.Quit()

	if err := conn.Login(user, pass); err != nil {
		metrics.ArtifactFetches.WithLabelValues("ftp", "error").Inc()
		return nil, fmt.Errorf("ftp login: %w", err)
	}

	resp, err := conn.Retr(file)
	if err != nil {
		metrics.ArtifactFetches.WithLabelValues("ftp", "error").Inc()
		return nil, fmt.Errorf("ftp retr: %w", err)
	}
	defer resp.Close()

	body, err := readLimited(resp)
	if err != nil {
		metrics.ArtifactFetches.WithLabelValues("ftp", "error").Inc()
		return nil, err
	}
	metrics.ArtifactFetches.WithLabelValues("ftp", "ok").Inc()
	return body, nil
}

func ftpTarget(u *url.URL) (addr, user, pass, file string) {
	port := u.Port()
	if port == "" {
		port = "21"
	}
	addr = net.JoinHostPort(u.Hostname(), port)

	user, pass = "anonymous", "anonymous"
	if u.User != nil {
		user = u.User.Username()
		if p, ok := u.User.Password(); ok {
			pass = p
		}
	}
	return addr, user, pass, u.Path
}

func readLimited(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	if len(body) > MaxSize {
		return nil, fmt.Errorf("read artifact: larger than %d bytes", MaxSize)
	}
	return body, nil
}
