// Package videocache keeps local copies of remote sign videos so each clip
// is downloaded once and can be decoded from disk.
package videocache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	videoExt        = ".mp4"
	progressEvery   = 2 * time.Second
	downloadTimeout = 5 * time.Minute
)

// ErrNotFound is returned when a remote locator does not exist.
var ErrNotFound = errors.New("not found")

// Cache downloads clips into Dir.
type Cache struct {
	dir     string
	client  *http.Client
	objects ObjectStore
	logger  *zap.Logger

	// sidecarSuffix enables landmark companions when set.
	sidecarSuffix string
	sidecars      map[string]string

	mu sync.Mutex
	// noSidecar remembers remote clips known to have no companion.
	noSidecar map[string]bool
}

// New creates a Cache rooted at dir. A nil client uses a client with a
// generous timeout for large clips.
func New(dir string, client *http.Client, logger *zap.Logger) *Cache {
	if client == nil {
		client = &http.Client{Timeout: downloadTimeout}
	}
	return &Cache{dir: dir, client: client, logger: logger}
}

// UseObjectStore enables s3:// locators.
func (c *Cache) UseObjectStore(store ObjectStore) {
	c.objects = store
}

// UseSidecars makes Fetch also download the landmark file of each remote
// clip and store it next to the cached clip, named <clip>suffix. explicit
// maps a clip locator to its landmark locator; other clips look for a file
// named like the clip with suffix in place of the extension.
func (c *Cache) UseSidecars(suffix string, explicit map[string]string) {
	c.sidecarSuffix = suffix
	c.sidecars = explicit
}

// SidecarLocator returns where the landmark file for a remote clip lives.
// It reports false when sidecars are off or the clip locator names no file
// to derive one from.
func (c *Cache) SidecarLocator(locator string) (string, bool) {
	if c.sidecarSuffix == "" {
		return "", false
	}
	if loc, ok := c.sidecars[locator]; ok {
		return loc, true
	}

	if bucket, key, ok := ParseObjectLocator(locator); ok {
		ext := path.Ext(key)
		if ext == "" {
			return "", false
		}
		return objectScheme + bucket + "/" + strings.TrimSuffix(key, ext) + c.sidecarSuffix, true
	}

	u, err := url.Parse(locator)
	if err != nil {
		return "", false
	}
	ext := path.Ext(u.Path)
	if ext == "" {
		return "", false
	}
	u.Path = strings.TrimSuffix(u.Path, ext) + c.sidecarSuffix
	u.RawPath = ""
	return u.String(), true
}

// sidecarPath is where the landmark file of a cached clip is stored.
func (c *Cache) sidecarPath(clipPath string) string {
	return strings.TrimSuffix(clipPath, filepath.Ext(clipPath)) + c.sidecarSuffix
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// PathFor returns the cache file path used for a remote locator.
func (c *Cache) PathFor(locator string) string {
	sum := sha256.Sum256([]byte(locator))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:8])+videoExt)
}

// Fetch returns a local path for locator. Local files are returned as-is;
// http(s) URLs and s3://bucket/key objects are downloaded on first use.
func (c *Cache) Fetch(ctx context.Context, locator string) (string, error) {
	if !isRemote(locator) {
		if _, err := os.Stat(locator); err != nil {
			return "", fmt.Errorf("videocache: %w", err)
		}
		return locator, nil
	}

	destPath := c.PathFor(locator)
	if info, err := os.Stat(destPath); err == nil && info.Size() > 0 {
		c.logger.Debug("Video cache hit", zap.String("path", destPath))
	} else {
		c.logger.Info("Downloading video", zap.String("locator", locator), zap.String("dest", destPath))
		if err := c.download(ctx, locator, destPath); err != nil {
			return "", err
		}
	}

	c.fetchSidecar(ctx, locator, destPath)
	return destPath, nil
}

func (c *Cache) download(ctx context.Context, locator, destPath string) error {
	body, size, err := c.open(ctx, locator)
	if err != nil {
		return err
	}
	defer body.Close()
	return c.store(body, size, destPath)
}

// fetchSidecar downloads the landmark file for a cached clip when one is
// published and not yet cached. A clip without landmarks still plays, so
// failures are only logged.
func (c *Cache) fetchSidecar(ctx context.Context, locator, clipPath string) {
	sidecar, ok := c.SidecarLocator(locator)
	if !ok {
		return
	}
	destPath := c.sidecarPath(clipPath)
	if _, err := os.Stat(destPath); err == nil {
		return
	}

	c.mu.Lock()
	known := c.noSidecar[locator]
	c.mu.Unlock()
	if known {
		return
	}

	err := c.download(ctx, sidecar, destPath)
	switch {
	case err == nil:
		c.logger.Debug("Landmark sidecar cached", zap.String("path", destPath))
	case errors.Is(err, ErrNotFound):
		c.logger.Debug("No landmark sidecar published", zap.String("locator", sidecar))
		c.mu.Lock()
		if c.noSidecar == nil {
			c.noSidecar = make(map[string]bool)
		}
		c.noSidecar[locator] = true
		c.mu.Unlock()
	default:
		c.logger.Warn("Landmark sidecar download failed", zap.String("locator", sidecar), zap.Error(err))
	}
}

// open starts reading a remote locator and reports its size, or -1 when
// unknown.
func (c *Cache) open(ctx context.Context, locator string) (io.ReadCloser, int64, error) {
	if bucket, key, ok := ParseObjectLocator(locator); ok {
		if c.objects == nil {
			return nil, 0, fmt.Errorf("videocache: %s: no object store configured", locator)
		}
		body, size, err := c.objects.GetObject(ctx, bucket, key)
		if err != nil {
			return nil, 0, fmt.Errorf("videocache: downloading %s: %w", locator, err)
		}
		return body, size, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("videocache: create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("videocache: downloading %s: %w", locator, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, 0, fmt.Errorf("videocache: %s: %w", locator, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, 0, fmt.Errorf("videocache: download failed: HTTP %d", resp.StatusCode)
	}
	// Hosts such as Drive answer 200 with an HTML page (sign-in, virus scan
	// notice) instead of the file.
	if mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); mediaType == "text/html" {
		resp.Body.Close()
		return nil, 0, fmt.Errorf("videocache: %s returned an HTML page instead of a file", locator)
	}
	return resp.Body, resp.ContentLength, nil
}

// store writes body to a temp file in the cache dir and renames it into
// place, so a partial download is never mistaken for a cached clip.
func (c *Cache) store(body io.Reader, size int64, destPath string) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("videocache: creating cache dir: %w", err)
	}

	f, err := os.CreateTemp(c.dir, ".download-*")
	if err != nil {
		return fmt.Errorf("videocache: creating temp file: %w", err)
	}
	tmpPath := f.Name()

	pw := &progressWriter{
		writer: f,
		total:  size,
		label:  filepath.Base(destPath),
		logger: c.logger,
		every:  progressEvery,
	}

	written, err := io.Copy(pw, body)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written == 0 {
		err = fmt.Errorf("empty response body")
	}
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("videocache: writing %s: %w", destPath, err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("videocache: moving downloaded file: %w", err)
	}

	c.logger.Info("Downloaded",
		zap.String("path", destPath),
		zap.Float64("megabytes", float64(written)/(1024*1024)))
	return nil
}

func isRemote(locator string) bool {
	return strings.HasPrefix(locator, "http://") ||
		strings.HasPrefix(locator, "https://") ||
		strings.HasPrefix(locator, objectScheme)
}

// progressWriter wraps an io.Writer and logs download progress at most
// once per interval.
type progressWriter struct {
	writer  io.Writer
	total   int64
	written int64
	label   string
	logger  *zap.Logger
	every   time.Duration
	last    time.Time
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.writer.Write(p)
	pw.written += int64(n)

	if now := time.Now(); now.Sub(pw.last) >= pw.every {
		pw.last = now
		fields := []zap.Field{
			zap.String("file", pw.label),
			zap.Float64("megabytes", float64(pw.written)/(1024*1024)),
		}
		if pw.total > 0 {
			fields = append(fields, zap.Float64("percent", float64(pw.written)/float64(pw.total)*100))
		}
		pw.logger.Debug("Download progress", fields...)
	}
	return n, err
}
