package encoder

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"golang.org/x/image/draw"
)

// ErrFetch marks a source image that could not be retrieved or decoded: an
// unreachable URL, a non-success upstream status, or a malformed data URI.
var ErrFetch = errors.New("failed to fetch source image")

const defaultContentType = "image/png"

// jpegQuality is used when re-encoding toward the byte budget.
const jpegQuality = 85

// Encoder normalizes an image reference (data URI or http(s) URL) into raw
// bytes plus a content type, optionally downsizing large images before they
// reach the store.
type Encoder struct {
	client   *http.Client
	maxBytes int64 // hard cap on fetched bodies
	maxDim   int   // bounding box for downsizing, 0 disables
	byteGoal int64 // target payload size after re-encode, 0 disables
}

func New(fetchTimeout time.Duration, maxFetchBytes int64, maxDim int, byteGoal int64) *Encoder {
	return &Encoder{
		client:   &http.Client{Timeout: fetchTimeout},
		maxBytes: maxFetchBytes,
		maxDim:   maxDim,
		byteGoal: byteGoal,
	}
}

// Normalize resolves imageRef to (payload, contentType). Data URIs are decoded
// in place with no I/O; URLs cost exactly one outbound request. Downsizing is
// best effort: a payload that cannot be decoded as an image passes through
// unchanged with its declared content type.
func (e *Encoder) Normalize(ctx context.Context, imageRef string) ([]byte, string, error) {
	var (
		payload     []byte
		contentType string
		err         error
	)

	switch {
	case strings.HasPrefix(imageRef, "data:"):
		payload, contentType, err = decodeDataURI(imageRef)
	case strings.HasPrefix(imageRef, "http://"), strings.HasPrefix(imageRef, "https://"):
		payload, contentType, err = e.fetch(ctx, imageRef)
	default:
		err = fmt.Errorf("%w: unsupported image reference", ErrFetch)
	}
	if err != nil {
		return nil, "", err
	}

	return e.shrink(payload, contentType)
}

// decodeDataURI decodes a data:<mime>;base64,<data> reference.
func decodeDataURI(uri string) ([]byte, string, error) {
	meta, data, found := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !found {
		return nil, "", fmt.Errorf("%w: malformed data URI", ErrFetch)
	}

	encoding, ok := strings.CutSuffix(meta, ";base64")
	contentType := encoding
	if !ok {
		return nil, "", fmt.Errorf("%w: data URI is not base64 encoded", ErrFetch)
	}
	if contentType == "" {
		contentType = defaultContentType
	}

	payload, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		// Some producers omit padding
		payload, err = base64.RawStdEncoding.DecodeString(data)
	}
	if err != nil {
		return nil, "", fmt.Errorf("%w: invalid base64 payload: %v", ErrFetch, err)
	}
	if len(payload) == 0 {
		return nil, "", fmt.Errorf("%w: empty data URI payload", ErrFetch)
	}

	return payload, contentType, nil
}

func (e *Encoder) fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrFetch, err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("%w: unexpected status %d from %s", ErrFetch, resp.StatusCode, url)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if int64(len(payload)) > e.maxBytes {
		return nil, "", fmt.Errorf("%w: response larger than %d bytes", ErrFetch, e.maxBytes)
	}
	if len(payload) == 0 {
		return nil, "", fmt.Errorf("%w: empty response body", ErrFetch)
	}

	contentType := defaultContentType
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err == nil && strings.HasPrefix(mediaType, "image/") {
			contentType = mediaType
		}
	}

	return payload, contentType, nil
}

// shrink bounds the image to maxDim on the longest side and re-encodes toward
// the byte goal. The returned content type always describes the returned
// bytes; when shrinking is disabled or the payload is not decodable, the input
// passes through untouched.
func (e *Encoder) shrink(payload []byte, contentType string) ([]byte, string, error) {
	if e.maxDim <= 0 && e.byteGoal <= 0 {
		return payload, contentType, nil
	}

	img, format, err := image.Decode(bytes.NewReader(payload))
	if err != nil {
		slog.Debug("encoder: payload not decodable, skipping downsizing", "content_type", contentType, "error", err)
		return payload, contentType, nil
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	fitsDim := e.maxDim <= 0 || (width <= e.maxDim && height <= e.maxDim)
	fitsBytes := e.byteGoal <= 0 || int64(len(payload)) <= e.byteGoal
	if fitsDim && fitsBytes {
		return payload, contentType, nil
	}

	if !fitsDim {
		img = scaleToFit(img, e.maxDim)
	}

	out, outType, err := encodeAs(img, format)
	if err != nil {
		slog.Debug("encoder: re-encode failed, keeping original payload", "format", format, "error", err)
		return payload, contentType, nil
	}

	// Still over budget: JPEG compresses photographic output far better than
	// PNG, and the reported type changes with the bytes.
	if e.byteGoal > 0 && int64(len(out)) > e.byteGoal && outType != "image/jpeg" {
		var buf bytes.Buffer
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
		if err == nil {
			out, outType = buf.Bytes(), "image/jpeg"
		}
	}

	slog.Debug("encoder: downsized image",
		"original_bytes", len(payload),
		"result_bytes", len(out),
		"result_type", outType,
	)

	return out, outType, nil
}

// scaleToFit scales img so its longest side equals maxDim, preserving aspect
// ratio.
func scaleToFit(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	scaledWidth, scaledHeight := maxDim, maxDim
	if width >= height {
		scaledHeight = height * maxDim / width
	} else {
		scaledWidth = width * maxDim / height
	}
	if scaledWidth < 1 {
		scaledWidth = 1
	}
	if scaledHeight < 1 {
		scaledHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, scaledWidth, scaledHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}

func encodeAs(img image.Image, format string) ([]byte, string, error) {
	var buf bytes.Buffer
	switch format {
	case "jpeg":
		err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
		return buf.Bytes(), "image/jpeg", err
	case "gif":
		err := gif.Encode(&buf, img, nil)
		return buf.Bytes(), "image/gif", err
	default:
		err := png.Encode(&buf, img)
		return buf.Bytes(), "image/png", err
	}
}
