// Package bakery embeds Open Badges assertions into badge images and
// extracts them again.
//
// A "baked" badge is an ordinary image carrying the assertion JSON in its
// metadata, so the image alone is a self-contained credential. PNG images
// carry the payload in an iTXt chunk with the keyword "openbadges"; SVG
// images carry it in an <openbadges:assertion> element.
//
// Unbake distinguishes an image that is simply not baked (ErrNotBaked)
// from an image whose container is damaged (ErrCorrupt).
package bakery

import (
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

// Keyword is the metadata marker under which the payload is stored.
const Keyword = "openbadges"

// Sentinel errors returned by Bake and Unbake.
var (
	// ErrNotBaked is returned when the image is well formed but carries
	// no badge payload.
	ErrNotBaked = errors.New("image does not contain a baked badge")

	// ErrCorrupt is returned when the image container cannot be read.
	// It is always wrapped with the specific defect.
	ErrCorrupt = errors.New("corrupt image container")

	// ErrUnsupportedFormat is returned for containers other than PNG and SVG.
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// Format identifies an image container.
type Format string

// Supported container formats.
const (
	FormatPNG     Format = "png"
	FormatSVG     Format = "svg"
	FormatUnknown Format = "unknown"
)

// Detect sniffs the container format of image.
func Detect(image []byte) Format {
	if hasPNGSignature(image) {
		return FormatPNG
	}

	mt := mimetype.Detect(image)
	switch {
	case mt.Is("image/png"):
		return FormatPNG
	case mt.Is("image/svg+xml"):
		return FormatSVG
	}

	// mimetype only recognises SVG when the root element comes early.
	if looksLikeSVG(image) {
		return FormatSVG
	}

	return FormatUnknown
}

// IsImage reports whether data looks like a container Unbake understands.
func IsImage(data []byte) bool {
	return Detect(data) != FormatUnknown
}

// Bake returns a copy of image with payload embedded in its metadata.
// Any payload previously baked into the image is replaced. The visual
// content and the container format are preserved.
func Bake(image []byte, payload string) ([]byte, error) {
	switch Detect(image) {
	case FormatPNG:
		return bakePNG(image, payload)
	case FormatSVG:
		return bakeSVG(image, payload)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// Unbake extracts the payload embedded in image.
func Unbake(image []byte) (string, error) {
	switch Detect(image) {
	case FormatPNG:
		return unbakePNG(image)
	case FormatSVG:
		return unbakeSVG(image)
	default:
		return "", ErrUnsupportedFormat
	}
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorrupt, fmt.Sprintf(format, args...))
}
