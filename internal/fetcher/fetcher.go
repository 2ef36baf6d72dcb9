// Package fetcher retrieves remote inputs: spreadsheet files referenced
// by URL on the import command line, and TIGER/Line shapefile archives
// used to build the state centroid table. HTTP downloads are retried
// with backoff and rate limited per host.
package fetcher

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// Fetcher downloads remote files.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path.
	// Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}

// Open resolves a file reference that may be a local path, an http(s)
// URL, or an ftp URL. Callers must close the returned reader.
func Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return NewHTTPFetcher(HTTPOptions{}).Download(ctx, ref)
	case strings.HasPrefix(ref, "ftp://"):
		return NewFTPFetcher(FTPOptions{}).Download(ctx, ref)
	}

	file, err := os.Open(ref)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: open %s", ref)
	}
	return file, nil
}
