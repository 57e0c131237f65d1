// SPDX-License-Identifier: MIT

// Package avatar stores user avatar images and returns their public URLs.
package avatar

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// Uploader stores an avatar image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, r io.Reader) (string, error)
}

// Cloudinary uploads avatars to a Cloudinary account.
type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinary creates a Cloudinary uploader from account credentials.
func NewCloudinary(cloudName, apiKey, apiSecret string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("avatar: cloudinary init: %w", err)
	}
	return &Cloudinary{cld: cld}, nil
}

// Upload stores the image and returns its HTTPS delivery URL.
func (c *Cloudinary) Upload(ctx context.Context, r io.Reader) (string, error) {
	resp, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{Folder: "avatars"})
	if err != nil {
		return "", fmt.Errorf("avatar: cloudinary upload: %w", err)
	}
	return resp.SecureURL, nil
}

// Local stores avatars on the local filesystem, served under /avatars/.
// It is the fallback when no Cloudinary account is configured.
type Local struct {
	dir     string
	baseURL string
}

// NewLocal creates a local avatar store rooted at dir.
func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("avatar: create dir %s: %w", dir, err)
	}
	return &Local{dir: dir, baseURL: baseURL}, nil
}

// Dir returns the storage directory, for wiring a static file route.
func (l *Local) Dir() string { return l.dir }

// Upload writes the image to a uniquely named file. The write goes through
// a temp file and rename so a crash cannot leave a half-written avatar
// behind the public URL.
func (l *Local) Upload(ctx context.Context, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := uuid.New().String() + ".img"

	tmp, err := os.CreateTemp(l.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("avatar: temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("avatar: write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("avatar: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(l.dir, name)); err != nil {
		return "", fmt.Errorf("avatar: finalize image: %w", err)
	}

	return l.baseURL + "/avatars/" + name, nil
}
