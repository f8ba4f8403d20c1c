package convert

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

// Downloader fetches the codebook workbook over HTTP with retries.
type Downloader struct {
	HTTPClient *http.Client
	log        zerolog.Logger
}

// NewDownloader creates a Downloader that retries failed requests three times.
func NewDownloader(log zerolog.Logger) *Downloader {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.Logger = nil
	retryClient.HTTPClient = &http.Client{
		Timeout: 5 * time.Minute,
	}
	return &Downloader{
		HTTPClient: retryClient.StandardClient(),
		log:        log,
	}
}

// DownloadFile downloads url to path. The file is only created once the
// server answered with 200 OK.
func (d *Downloader) DownloadFile(ctx context.Context, path, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	d.log.Info().Str("url", url).Str("path", path).Msg("Downloading workbook")
	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download %s: unexpected status %s", url, resp.Status)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer out.Close()

	n, err := io.Copy(out, resp.Body)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	d.log.Info().Int64("bytes", n).Msg("Download complete")

	return out.Close()
}
