package validation

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// multipartHeader builds a real *multipart.FileHeader by round-tripping the
// payload through the standard library's multipart reader
func multipartHeader(t *testing.T, payload []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "upload.bin")
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(64<<20))

	headers := req.MultipartForm.File["image"]
	require.Len(t, headers, 1)
	return headers[0]
}

func TestValidateImagePart(t *testing.T) {
	pngHeader := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 16)...)
	jpegHeader := append([]byte("\xff\xd8\xff\xe0"), bytes.Repeat([]byte{0}, 16)...)
	gifHeader := append([]byte("GIF89a"), bytes.Repeat([]byte{0}, 16)...)

	tests := []struct {
		name     string
		payload  []byte
		wantType string
		wantErr  string
	}{
		{name: "png", payload: pngHeader, wantType: "image/png"},
		{name: "jpeg", payload: jpegHeader, wantType: "image/jpeg"},
		{name: "gif", payload: gifHeader, wantType: "image/gif"},
		{name: "plain text", payload: []byte("hello world, definitely not pixels"), wantErr: "invalid image type"},
		{name: "empty", payload: []byte{}, wantErr: "invalid image type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := multipartHeader(t, tt.payload)
			detected, err := ValidateImagePart(header, DefaultImageConstraints)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, detected)
		})
	}
}

func TestValidateImagePartIgnoresClaimedContentType(t *testing.T) {
	// A text payload stays invalid no matter what the client claims
	header := multipartHeader(t, []byte("<script>alert(1)</script>"))
	header.Header.Set("Content-Type", "image/png")

	_, err := ValidateImagePart(header, DefaultImageConstraints)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid image type")
}

func TestValidateImagePartSizeLimit(t *testing.T) {
	payload := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	header := multipartHeader(t, payload)

	constraints := DefaultImageConstraints
	constraints.MaxSize = 16

	_, err := ValidateImagePart(header, constraints)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image too large")
}

func TestValidatePrompt(t *testing.T) {
	assert.NoError(t, ValidatePrompt("a red fox"))
	assert.Error(t, ValidatePrompt(""))
	assert.Error(t, ValidatePrompt("   \t\n"))
	assert.Error(t, ValidatePrompt(strings.Repeat("x", MaxPromptLength+1)))
	assert.NoError(t, ValidatePrompt(strings.Repeat("x", MaxPromptLength)))
}
