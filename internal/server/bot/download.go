package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/dmitrijs2005/dogspotter/internal/httpx"
)

const defaultExt = "jpg"

var errTooLarge = errors.New("file is too large")

// download fetches a file by its direct URL, reading at most limit bytes.
func download(ctx context.Context, client *http.Client, fileURL string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, err
	}

	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", httpx.StripURL(err))
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed statusCode=%d", res.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(res.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(b)) > limit {
		return nil, errTooLarge
	}
	return b, nil
}

// fileExt returns the extension of the file a Telegram URL points at.
func fileExt(fileURL string) string {
	u, err := url.Parse(fileURL)
	if err != nil {
		return defaultExt
	}
	ext := strings.TrimPrefix(path.Ext(u.Path), ".")
	if ext == "" || strings.ContainsAny(ext, `/\`) {
		return defaultExt
	}
	return strings.ToLower(ext)
}
