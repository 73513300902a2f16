// Package uploader is the guest-side upload scheduler: it filters a list of
// local files against the media allow-list, uploads them with a bounded
// number of concurrent requests, tracks aggregate progress and reports a
// partial-success summary instead of failing the whole batch.
package uploader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultConcurrency bounds simultaneous in-flight uploads.
const DefaultConcurrency = 3

// allowedMimeTypes mirrors the server allow-list. The check here is advisory
// only, it saves pointless transfers; the server decides.
var allowedMimeTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"image/heic",
	"image/heif",
	"image/gif",
	"video/mp4",
	"video/quicktime",
	"video/webm",
}

type Options struct {
	// BaseURL of the service, e.g. "https://photos.example.com".
	BaseURL string
	// Concurrency overrides DefaultConcurrency when > 0.
	Concurrency int
	HTTPClient  *http.Client
	// OnProgress receives the aggregate fraction in [0,1]; it is
	// non-decreasing across calls.
	OnProgress func(aggregate float64)
}

type Client struct {
	baseURL     string
	concurrency int
	http        *http.Client
	onProgress  func(float64)
}

func New(opts Options) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		concurrency: opts.Concurrency,
		http:        opts.HTTPClient,
		onProgress:  opts.OnProgress,
	}
	if c.concurrency <= 0 {
		c.concurrency = DefaultConcurrency
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	return c
}

// FileResult is the terminal outcome of one transmitted file.
type FileResult struct {
	Path     string
	MimeType string
	Err      error
}

// Summary reports the whole batch: how many landed, how many failed, and
// which files were routed to the skipped list without being transmitted.
type Summary struct {
	Uploaded int
	Failed   int
	Skipped  []string
	Results  []FileResult
}

// UploadAll uploads the given files to the event. Files whose sniffed type
// is outside the allow-list are skipped up front. At most min(C, n) workers
// run; each claims the next file by advancing a shared cursor, uploads it,
// and only then claims another. Per-file failures do not stop the batch.
func (c *Client) UploadAll(ctx context.Context, eventID string, paths []string) (*Summary, error) {
	summary := &Summary{}

	type queued struct {
		path     string
		mimeType string
	}
	var queue []queued

	for _, p := range paths {
		mt, ok := sniffAllowed(p)
		if !ok {
			summary.Skipped = append(summary.Skipped, p)
			continue
		}
		queue = append(queue, queued{path: p, mimeType: mt})
	}

	if len(queue) == 0 {
		return summary, nil
	}

	summary.Results = make([]FileResult, len(queue))
	tracker := newProgressTracker(len(queue), c.onProgress)

	workers := c.concurrency
	if len(queue) < workers {
		workers = len(queue)
	}

	var cursor atomic.Int64
	var wg sync.WaitGroup
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				i := int(cursor.Add(1)) - 1
				if i >= len(queue) || ctx.Err() != nil {
					return
				}
				q := queue[i]
				err := c.uploadOne(ctx, eventID, q.path, q.mimeType, i, tracker)
				if err == nil {
					tracker.set(i, 1)
				}
				summary.Results[i] = FileResult{Path: q.path, MimeType: q.mimeType, Err: err}
			}
		}()
	}

	wg.Wait()

	for _, r := range summary.Results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Uploaded++
		}
	}
	return summary, ctx.Err()
}

// uploadOne issues a single streaming multipart POST. The request body is
// piped, so the file is never buffered whole.
func (c *Client) uploadOne(ctx context.Context, eventID, path, mimeType string, index int, tracker *progressTracker) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreatePart(partHeader(filepath.Base(path), mimeType))
		if err == nil {
			_, err = io.Copy(part, &progressReader{
				r:     f,
				total: info.Size(),
				index: index,
				track: tracker,
			})
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	url := fmt.Sprintf("%s/api/upload/%s", c.baseURL, eventID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pr)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	var body struct {
		Error string `json:"error"`
	}
	if json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body) == nil && body.Error != "" {
		return fmt.Errorf("upload rejected (%d): %s", resp.StatusCode, body.Error)
	}
	return fmt.Errorf("upload rejected with status %d", resp.StatusCode)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func partHeader(filename, mimeType string) textproto.MIMEHeader {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(filename)))
	h.Set("Content-Type", mimeType)
	return h
}

// sniffAllowed detects the file's MIME type from its content and matches it
// against the allow-list.
func sniffAllowed(path string) (string, bool) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "", false
	}
	for _, allowed := range allowedMimeTypes {
		if mt.Is(allowed) {
			return allowed, true
		}
	}
	return mt.String(), false
}
