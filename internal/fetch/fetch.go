// Package fetch retrieves Wikimedia dump files and opens them for reading,
// decompressing .gz and .bz2 payloads transparently. Downloads resume from
// a partial file on disk using HTTP Range requests, since a page dump for a
// large edition runs to gigabytes and connections to the dump mirrors drop.
package fetch

import (
	"compress/bzip2"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMirror is the canonical Wikimedia dump host.
const DefaultMirror = "https://dumps.wikimedia.org"

// DumpURL builds the latest-dump URL for one language's file, e.g.
// DumpURL(mirror, "ja", "langlinks") ->
// <mirror>/jawiki/latest/jawiki-latest-langlinks.sql.gz.
func DumpURL(mirror, lang, table string) string {
	return fmt.Sprintf("%s/%swiki/latest/%swiki-latest-%s.sql.gz",
		strings.TrimSuffix(mirror, "/"), lang, lang, table)
}

// DumpPath is the on-disk cache location for one language's dump file.
func DumpPath(cacheDir, lang, table string) string {
	return filepath.Join(cacheDir, fmt.Sprintf("%swiki-latest-%s.sql.gz", lang, table))
}

// Progress receives running byte counts during a download.
type Progress func(written, total int64)

// Download fetches url into path, resuming from an existing partial file.
// A 416 response means the file on disk is already complete. A server that
// ignores the Range header and answers 200 restarts the file from scratch.
func Download(ctx context.Context, client *http.Client, url, path string, progress Progress) error {
	if client == nil {
		client = http.DefaultClient
	}

	var offset int64
	if fi, err := os.Stat(path); err == nil {
		offset = fi.Size()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusRequestedRangeNotSatisfiable:
		// Range starts at or past EOF: already fully downloaded.
		return nil
	case http.StatusPartialContent:
	case http.StatusOK:
		// Server ignored the Range header; start over.
		offset = 0
	default:
		return fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	flags := os.O_CREATE | os.O_WRONLY
	if offset > 0 {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return err
	}

	total := offset + resp.ContentLength
	if resp.ContentLength < 0 {
		total = -1
	}

	written := offset
	buf := make([]byte, 1<<17)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := f.Write(buf[:n]); writeErr != nil {
				f.Close()
				return writeErr
			}
			written += int64(n)
			if progress != nil {
				progress(written, total)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			f.Close()
			return fmt.Errorf("GET %s: %w", url, readErr)
		}
	}
	return f.Close()
}

// Open opens a local path or an HTTP(S) URL for streaming reads, wrapping
// the stream in a gzip or bzip2 decompressor when the name says so. The
// caller must close the returned reader.
func Open(pathOrURL string) (io.ReadCloser, error) {
	if isHTTPURL(pathOrURL) {
		return openHTTP(pathOrURL)
	}
	return openLocal(pathOrURL)
}

func isHTTPURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

func openLocal(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	rc, err := wrapCompressed(f, path)
	if err != nil {
		f.Close()
		return nil, err
	}
	return rc, nil
}

func openHTTP(url string) (io.ReadCloser, error) {
	resp, err := http.Get(url) // #nosec G107 - URL is user-provided by design.
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}
	rc, err := wrapCompressed(resp.Body, url)
	if err != nil {
		resp.Body.Close()
		return nil, err
	}
	return rc, nil
}

// wrapCompressed wraps rc in a decompressor chosen by the file extension of
// name, ignoring any query or fragment part.
func wrapCompressed(rc io.ReadCloser, name string) (io.ReadCloser, error) {
	lower := strings.ToLower(name)
	if idx := strings.IndexAny(lower, "?#"); idx >= 0 {
		lower = lower[:idx]
	}
	switch {
	case strings.HasSuffix(lower, ".gz"):
		zr, err := gzip.NewReader(rc)
		if err != nil {
			return nil, fmt.Errorf("gzip %s: %w", name, err)
		}
		return readCloser{Reader: zr, Closer: rc}, nil
	case strings.HasSuffix(lower, ".bz2"):
		return readCloser{Reader: bzip2.NewReader(rc), Closer: rc}, nil
	default:
		return rc, nil
	}
}

// readCloser pairs a decompressing reader with the underlying stream's
// Close method.
type readCloser struct {
	io.Reader
	io.Closer
}
