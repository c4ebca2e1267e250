package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// ErrEmptyUpload is returned when no bytes were received.
var ErrEmptyUpload = errors.New("empty upload")

const maxNameAttempts = 100

// DiskStore saves uploaded product images to a local directory served under /images.
type DiskStore struct {
	dir     string
	baseURL string
	now     func() time.Time
	logger  *zap.Logger
}

// NewDiskStore creates the upload directory if needed
func NewDiskStore(dir, publicBaseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	return &DiskStore{
		dir:     dir,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
		now:     time.Now,
		logger:  util.GetLogger(),
	}, nil
}

// Dir returns the directory images are written to
func (s *DiskStore) Dir() string {
	return s.dir
}

// StoreImage writes the upload as product_<unix millis><ext> and returns its
// public URL. Uploads landing in the same millisecond get a _<n> suffix.
func (s *DiskStore) StoreImage(ctx context.Context, originalName string, r io.Reader) (string, error) {
	_, span := util.StartSpan(ctx, "DiskStore.StoreImage")
	defer span.End()

	f, name, err := s.create(s.now().UnixMilli(), strings.ToLower(filepath.Ext(originalName)))
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	path := filepath.Join(s.dir, name)

	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil && n == 0 {
		err = ErrEmptyUpload
	}
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	s.logger.Info("Image stored", zap.String("file", name), zap.Int64("bytes", n))

	return fmt.Sprintf("%s/images/%s", s.baseURL, name), nil
}

func (s *DiskStore) create(millis int64, ext string) (*os.File, string, error) {
	name := fmt.Sprintf("product_%d%s", millis, ext)
	for n := 1; ; n++ {
		f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, name, nil
		}
		if !os.IsExist(err) || n > maxNameAttempts {
			return nil, "", err
		}
		name = fmt.Sprintf("product_%d_%d%s", millis, n, ext)
	}
}
