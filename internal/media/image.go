// Package media stores post images and profile photos on an external host.
package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"mime"
	"net/http"
	"strings"

	"scribe/internal/models"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	// MaxDimension bounds the longest side of a stored image.
	MaxDimension = 2048
	JPEGQuality  = 82
	// MaxPixels bounds the decoded size of an upload. Compressed input can be
	// tiny while its pixel buffer is not.
	MaxPixels = 40_000_000
)

// Upload is an image file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Prepare checks that in is a decodable image no larger than maxBytes or
// MaxPixels and downscales it when either side exceeds MaxDimension. Images that are
// re-encoded come back as JPEG.
func Prepare(in Upload, maxBytes int64) (Upload, error) {
	if len(in.Content) == 0 {
		return Upload{}, models.NewValidationError("no image provided")
	}
	if maxBytes > 0 && int64(len(in.Content)) > maxBytes {
		return Upload{}, models.NewValidationError(fmt.Sprintf("file too large (max %dMB)", maxBytes/(1024*1024)))
	}

	if provided := normalizeContentType(in.ContentType); provided != "" && !strings.HasPrefix(provided, "image/") {
		return Upload{}, models.NewValidationError("unsupported file format")
	}
	detected := http.DetectContentType(in.Content)
	if !isAllowedImageMIME(detected) {
		return Upload{}, models.NewValidationError("unsupported file format")
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(in.Content))
	if err != nil {
		return Upload{}, models.NewValidationError("invalid image file")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return Upload{}, models.NewValidationError(fmt.Sprintf("image too large (max %d megapixels)", MaxPixels/1_000_000))
	}

	decoded, format, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		return Upload{}, models.NewValidationError("invalid image file")
	}

	b := decoded.Bounds()
	if b.Dx() <= MaxDimension && b.Dy() <= MaxDimension && format != "webp" {
		return Upload{
			Filename:    in.Filename,
			ContentType: decodedFormatToMime(format),
			Content:     in.Content,
		}, nil
	}

	resized := resizeToFit(decoded, MaxDimension, MaxDimension)
	encoded, err := encodeJPEG(resized, JPEGQuality)
	if err != nil {
		return Upload{}, models.NewInternalError(err)
	}
	return Upload{
		Filename:    in.Filename,
		ContentType: "image/jpeg",
		Content:     encoded,
	}, nil
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scale := float64(maxWidth) / float64(w)
	if s := float64(maxHeight) / float64(h); s < scale {
		scale = s
	}
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(mediaType)
}

func decodedFormatToMime(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
