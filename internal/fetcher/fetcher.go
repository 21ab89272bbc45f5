package fetcher

import (
	"context"
	"io"
)

// Fetcher downloads remote dataset files.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadIfChanged fetches the URL only if its ETag differs from the
	// given one. Returns (body, newETag, changed, error); when unchanged,
	// body is nil and changed is false.
	DownloadIfChanged(ctx context.Context, url string, etag string) (io.ReadCloser, string, bool, error)
}
