// Package sniffer identifies uploaded media by magic bytes rather than
// trusting the declared Content-Type.
package sniffer

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
)

type MediaType string

const (
	TypeMP4  MediaType = "mp4"
	TypeWEBM MediaType = "webm"
	TypeMOV  MediaType = "mov"
	TypeJPEG MediaType = "jpeg"
	TypePNG  MediaType = "png"
	TypeWEBP MediaType = "webp"
)

var ErrUnknownType = errors.New("unknown media type")

type Result struct {
	Type  MediaType
	MIME  string
	Video bool
}

func DetectHead(head []byte) (Result, error) {
	if len(head) == 0 {
		return Result{}, ErrUnknownType
	}

	if t := isoBoxBrand(head); t != "" {
		switch t {
		case "qt":
			return Result{Type: TypeMOV, MIME: "video/quicktime", Video: true}, nil
		default:
			return Result{Type: TypeMP4, MIME: "video/mp4", Video: true}, nil
		}
	}
	if isWEBM(head) {
		return Result{Type: TypeWEBM, MIME: "video/webm", Video: true}, nil
	}
	if isJPEG(head) {
		return Result{Type: TypeJPEG, MIME: "image/jpeg"}, nil
	}
	if isPNG(head) {
		return Result{Type: TypePNG, MIME: "image/png"}, nil
	}
	if isWEBP(head) {
		return Result{Type: TypeWEBP, MIME: "image/webp"}, nil
	}

	return Result{}, ErrUnknownType
}

// isoBoxBrand returns the major brand of an ISO base media file ("ftyp" box),
// or "" when the header is not one. MP4 and QuickTime share this container.
func isoBoxBrand(head []byte) string {
	if len(head) < 12 || string(head[4:8]) != "ftyp" {
		return ""
	}
	brand := strings.TrimSpace(string(head[8:12]))
	if strings.HasPrefix(brand, "qt") {
		return "qt"
	}
	return brand
}

func isWEBM(head []byte) bool {
	ebml := []byte{0x1a, 0x45, 0xdf, 0xa3}
	return len(head) >= len(ebml) && bytes.Equal(head[:len(ebml)], ebml)
}

func isJPEG(head []byte) bool {
	return len(head) > 3 &&
		head[0] == 0xff &&
		head[1] == 0xd8 &&
		head[2] == 0xff
}

func isPNG(head []byte) bool {
	pngMagic := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	return len(head) >= len(pngMagic) && bytes.Equal(head[:len(pngMagic)], pngMagic)
}

func isWEBP(head []byte) bool {
	return len(head) >= 12 &&
		bytes.Equal(head[:4], []byte("RIFF")) &&
		bytes.Equal(head[8:12], []byte("WEBP"))
}

func MimeTypeFromHTTP(header http.Header) string {
	contentType := header.Get("Content-Type")
	if contentType == "" {
		return ""
	}
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		return strings.TrimSpace(contentType[:idx])
	}
	return strings.TrimSpace(contentType)
}
