package inkwell

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"

	"github.com/eringen/inkwell/analytics"
)

const (
	maxAvatarWidth    = 256
	avatarJpegQuality = 80
	maxAvatarDownload = 5 << 20 // 5MB
	avatarsSubdir     = "avatars"
)

var avatarHTTPClient = &http.Client{Timeout: 15 * time.Second}

// refreshAvatar downloads a profile's avatar, downscales it, and stores the
// JPEG copy under the static dir so pages serve it locally.
func (a *App) refreshAvatar(ctx context.Context, profile analytics.Profile) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, profile.AvatarURL, nil)
	if err != nil {
		return fmt.Errorf("build avatar request: %w", err)
	}
	resp, err := avatarHTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch avatar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch avatar: got status %d", resp.StatusCode)
	}

	av, data, err := processAvatar(io.LimitReader(resp.Body, maxAvatarDownload), profile.Username)
	if err != nil {
		return err
	}

	dir := filepath.Join(a.staticDir, avatarsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create avatars dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, av.Filename), data, 0o644); err != nil {
		return fmt.Errorf("write avatar: %w", err)
	}
	return a.Store.SaveAvatar(av)
}

// processAvatar decodes an image from src, resizes it to maxAvatarWidth if
// wider, and encodes it as JPEG. Returns metadata and the encoded bytes.
func processAvatar(src io.Reader, username string) (Avatar, []byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return Avatar{}, nil, fmt.Errorf("decode avatar: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxAvatarWidth {
		newH := h * maxAvatarWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxAvatarWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w = maxAvatarWidth
		h = newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: avatarJpegQuality}); err != nil {
		return Avatar{}, nil, fmt.Errorf("encode avatar: %w", err)
	}

	return Avatar{
		Username:  username,
		Filename:  Slugify(username) + ".jpg",
		Width:     w,
		Height:    h,
		Size:      buf.Len(),
		FetchedAt: time.Now().UTC().Format(time.RFC3339),
	}, buf.Bytes(), nil
}
