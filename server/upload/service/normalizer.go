package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"

	"syscourse/server/catalog/domain"
	"syscourse/server/common/infra/object"
)

const (
	CanvasWidth  = 640
	CanvasHeight = 640

	kindImage = "image"
	kindPDF   = "pdf"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTransform       = errors.New("transform failed")
	ErrStorage         = errors.New("storage failed")
)

// Upload is one file as received from the multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Content     []byte
}

type uploadObserver interface {
	ObserveUpload(kind, result string)
}

type Normalizer struct {
	store    object.Store
	newID    func() string
	observer uploadObserver
}

func NewNormalizer(store object.Store, observer uploadObserver) *Normalizer {
	return &Normalizer{store: store, newID: domain.NewID, observer: observer}
}

// Normalize classifies, transforms and stores in. Nothing is written when the type is
// unsupported or the image cannot be decoded. A failed metadata patch leaves the
// uploaded object in place.
func (n *Normalizer) Normalize(ctx context.Context, in Upload) (domain.UploadResult, error) {
	filename := domain.SanitizeFilename(in.Filename)

	kind, err := classify(in.ContentType)
	if err != nil {
		n.observe("unsupported", "rejected")
		return domain.UploadResult{}, err
	}

	var (
		payload     []byte
		ext         string
		contentType string
	)
	switch kind {
	case kindImage:
		payload, err = normalizeImage(in.Content)
		if err != nil {
			n.observe(kind, "transform_error")
			return domain.UploadResult{}, err
		}
		ext, contentType = "png", "image/png"
	case kindPDF:
		payload, ext, contentType = in.Content, "pdf", "application/pdf"
	}

	id := n.newID()
	key := id + "." + ext
	if err := n.store.Put(ctx, key, payload, contentType); err != nil {
		n.observe(kind, "storage_error")
		return domain.UploadResult{}, fmt.Errorf("%w: upload %s: %v", ErrStorage, key, err)
	}
	if err := n.store.SetContentDisposition(ctx, key, ContentDisposition(filename)); err != nil {
		n.observe(kind, "storage_error")
		return domain.UploadResult{}, fmt.Errorf("%w: set content disposition on %s: %v", ErrStorage, key, err)
	}

	n.observe(kind, "ok")
	return domain.UploadResult{ResourceID: id, URL: n.store.PublicURL(key)}, nil
}

func (n *Normalizer) observe(kind, result string) {
	if n.observer != nil {
		n.observer.ObserveUpload(kind, result)
	}
}

func classify(contentType string) (string, error) {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return kindImage, nil
	case contentType == "application/pdf":
		return kindPDF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
	}
}

func normalizeImage(content []byte) ([]byte, error) {
	src, err := imaging.Decode(bytes.NewReader(content), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrTransform, err)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, padToCanvas(shrinkToFit(src)), imaging.PNG); err != nil {
		return nil, fmt.Errorf("%w: encode png: %v", ErrTransform, err)
	}
	return buf.Bytes(), nil
}

// shrinkToFit scales img down to fit the canvas, keeping aspect ratio. Smaller images
// are returned at their own size.
func shrinkToFit(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() <= CanvasWidth && b.Dy() <= CanvasHeight {
		return img
	}
	return imaging.Fit(img, CanvasWidth, CanvasHeight, imaging.Lanczos)
}

func padToCanvas(img image.Image) *image.NRGBA {
	canvas := imaging.New(CanvasWidth, CanvasHeight, color.NRGBA{})
	b := img.Bounds()
	return imaging.Paste(canvas, img, Placement(b.Dx(), b.Dy()))
}

// Placement is where a w x h image lands on the canvas: centered horizontally, and
// shifted up by the vertical margin rather than down.
func Placement(w, h int) image.Point {
	return image.Pt((CanvasWidth-w)/2, -((CanvasHeight - h) / 2))
}

func ContentDisposition(filename string) string {
	return fmt.Sprintf(`attachment; filename="%s"`, filename)
}
