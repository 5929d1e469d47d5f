package sniffer

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectHead(t *testing.T) {
	tests := []struct {
		name  string
		head  []byte
		want  MediaType
		video bool
	}{
		{
			name:  "mp4",
			head:  append([]byte{0, 0, 0, 0x18}, []byte("ftypisom\x00\x00\x02\x00isomiso2")...),
			want:  TypeMP4,
			video: true,
		},
		{
			name:  "quicktime",
			head:  append([]byte{0, 0, 0, 0x14}, []byte("ftypqt  \x00\x00\x02\x00qt  ")...),
			want:  TypeMOV,
			video: true,
		},
		{
			name:  "webm",
			head:  []byte{0x1a, 0x45, 0xdf, 0xa3, 0x01, 0x02, 0x03},
			want:  TypeWEBM,
			video: true,
		},
		{
			name: "jpeg",
			head: []byte{0xff, 0xd8, 0xff, 0xe0},
			want: TypeJPEG,
		},
		{
			name: "png",
			head: []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0},
			want: TypePNG,
		},
		{
			name: "webp",
			head: append([]byte("RIFF\x00\x00\x00\x00"), []byte("WEBP")...),
			want: TypeWEBP,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := DetectHead(tt.head)
			require.NoError(t, err)
			require.Equal(t, tt.want, result.Type)
			require.Equal(t, tt.video, result.Video)
		})
	}
}

func TestDetectHead_Unknown(t *testing.T) {
	_, err := DetectHead([]byte("plain text, definitely not media"))
	require.ErrorIs(t, err, ErrUnknownType)

	_, err = DetectHead(nil)
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestMimeTypeFromHTTP(t *testing.T) {
	header := http.Header{}
	require.Equal(t, "", MimeTypeFromHTTP(header))

	header.Set("Content-Type", "video/mp4; boundary=x")
	require.Equal(t, "video/mp4", MimeTypeFromHTTP(header))
}
