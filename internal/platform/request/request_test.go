// Copyright (c) 2026 Cardfolio. All rights reserved.
// Author: engineering@cardfolio.app

package requestutil_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardfolio/cardfolio/internal/platform/apperr"
	requestutil "github.com/cardfolio/cardfolio/internal/platform/request"
)

// multipartRequest builds a multipart/form-data request with one file part
// and arbitrary value fields.
func multipartRequest(t *testing.T, field, filename, contentType string, data []byte, values map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if field != "" {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
		header.Set("Content-Type", contentType)

		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}

	for name, value := range values {
		require.NoError(t, writer.WriteField(name, value))
	}

	require.NoError(t, writer.Close())

	request := httptest.NewRequest(http.MethodPost, "/vendors", &body)
	request.Header.Set("Content-Type", writer.FormDataContentType())
	return request
}

/*
TestReadImageUpload covers the required-file path: type checks and the size cap.
*/
func TestReadImageUpload(t *testing.T) {
	pngBytes := []byte{0x89, 0x50, 0x4e, 0x47}

	t.Run("valid_image", func(t *testing.T) {
		request := multipartRequest(t, "logo", "logo.png", "image/png", pngBytes, nil)

		upload, err := requestutil.ReadImageUpload(request, "logo", 1024)
		require.NoError(t, err)
		assert.Equal(t, pngBytes, upload.Data)
		assert.Equal(t, "image/png", upload.ContentType)
	})

	t.Run("missing_field", func(t *testing.T) {
		request := multipartRequest(t, "", "", "", nil, map[string]string{"company_name": "Acme"})

		_, err := requestutil.ReadImageUpload(request, "logo", 1024)
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})

	t.Run("non_image_rejected", func(t *testing.T) {
		request := multipartRequest(t, "logo", "notes.txt", "text/plain", []byte("hello"), nil)

		_, err := requestutil.ReadImageUpload(request, "logo", 1024)
		require.Error(t, err)
		assert.Equal(t, "File must be an image", apperr.As(err).Message)
	})

	t.Run("oversized_rejected", func(t *testing.T) {
		request := multipartRequest(t, "logo", "logo.png", "image/png", bytes.Repeat([]byte{0xab}, 64), nil)

		_, err := requestutil.ReadImageUpload(request, "logo", 16)
		require.Error(t, err)
		assert.Contains(t, apperr.As(err).Message, "maximum allowed size")
	})
}

/*
TestReadOptionalImageUpload verifies that an absent file field is not an error.
*/
func TestReadOptionalImageUpload(t *testing.T) {
	t.Run("absent_field_returns_nil", func(t *testing.T) {
		request := multipartRequest(t, "", "", "", nil, map[string]string{"company_name": "Acme"})

		upload, err := requestutil.ReadOptionalImageUpload(request, "logo", 1024)
		require.NoError(t, err)
		assert.Nil(t, upload)

		// Value fields remain readable after the upload check.
		assert.Equal(t, "Acme", request.PostFormValue("company_name"))
	})

	t.Run("present_field_is_validated", func(t *testing.T) {
		request := multipartRequest(t, "logo", "notes.txt", "text/plain", []byte("hello"), nil)

		_, err := requestutil.ReadOptionalImageUpload(request, "logo", 1024)
		require.Error(t, err)
	})

	t.Run("not_multipart", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/vendors", strings.NewReader("{}"))
		request.Header.Set("Content-Type", "application/json")

		_, err := requestutil.ReadOptionalImageUpload(request, "logo", 1024)
		require.Error(t, err)
	})
}
