// Package avatar downloads remote user avatars into the site's resource storage.
package avatar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"go-blog-app/internal/logger"

	"github.com/google/uuid"
)

// DefaultTimeout bounds a single avatar download.
const DefaultTimeout = 2 * time.Second

// maxAvatarBytes caps the size of a downloaded image.
const maxAvatarBytes = 5 << 20

// ErrTooLarge is returned for avatar bodies over maxAvatarBytes.
var ErrTooLarge = errors.New("avatar: image exceeds size limit")

var imageExtensions = []string{".jpg", ".png", "jpeg", ".gif"}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the download timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

// WithHTTPClient replaces the client used for downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithResourcePath sets the function returning the current resource directory.
func WithResourcePath(fn func(ctx context.Context) string) Option {
	return func(f *Fetcher) { f.resourcePath = fn }
}

// Fetcher downloads avatars and stores them under "<resource_path>/avatar/".
type Fetcher struct {
	client       *http.Client
	storage      Storage
	resourcePath func(ctx context.Context) string
	log          logger.Logger
}

// NewFetcher creates a Fetcher writing to storage.
func NewFetcher(storage Storage, log logger.Logger, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:       &http.Client{Timeout: DefaultTimeout},
		storage:      storage,
		resourcePath: func(context.Context) string { return "media" },
		log:          log,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Save downloads url and stores it under a random name. It returns the stored
// location and true, or url unchanged and false when the download fails.
func (f *Fetcher) Save(ctx context.Context, url string) (string, bool) {
	f.log.Info(fmt.Sprintf("saving avatar from %s", url))
	dir := path.Join(f.resourcePath(ctx), "avatar")

	if name, ok := previousName(url); ok {
		if err := f.storage.Remove(ctx, path.Join(dir, name)); err != nil {
			f.log.Warn(fmt.Sprintf("could not remove previous avatar %s: %v", name, err))
		}
	}

	body, contentType, err := f.download(ctx, url)
	if err != nil {
		f.log.Error(err, "avatar download failed, keeping remote url")
		return url, false
	}

	name := strings.ReplaceAll(uuid.NewString(), "-", "") + extension(url)
	key := path.Join(dir, name)
	location, err := f.storage.Write(ctx, key, body, contentType)
	if err != nil {
		f.log.Error(err, "avatar could not be stored, keeping remote url")
		return url, false
	}
	f.log.Info(fmt.Sprintf("saved avatar to %s", location))
	return location, true
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("invalid avatar url: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("avatar request returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAvatarBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read avatar: %w", err)
	}
	if len(body) > maxAvatarBytes {
		return nil, "", ErrTooLarge
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	return body, contentType, nil
}

// previousName returns the file name an earlier download of url would have
// been stored under. Names that could escape the avatar directory are refused.
func previousName(url string) (string, bool) {
	if strings.HasSuffix(url, "/") {
		return "", false
	}
	name := path.Base(url)
	switch name {
	case "", ".", "..", "/":
		return "", false
	}
	if strings.ContainsAny(name, `/\`) {
		return "", false
	}
	return name, true
}

// extension returns the URL's own extension when it names an image, else ".jpg".
func extension(url string) string {
	for _, ext := range imageExtensions {
		if strings.HasSuffix(url, ext) {
			if e := path.Ext(url); e != "" {
				return e
			}
		}
	}
	return ".jpg"
}
