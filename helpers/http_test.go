package helpers

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
)

func TestFetchWithRandomHeaders(t *testing.T) {
	httpmock.ActivateNonDefault(client)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "https://shop.example.com/list",
		func(req *http.Request) (*http.Response, error) {
			// Headers must look like a browser
			assert.NotEmpty(t, req.Header.Get("User-Agent"))
			assert.NotEmpty(t, req.Header.Get("referer"))
			return httpmock.NewStringResponse(200, "<html><body>상품 목록</body></html>"), nil
		})

	reader, err := FetchWithRandomHeaders(context.Background(), "https://shop.example.com/list")
	assert.NoError(t, err)

	body, err := io.ReadAll(reader)
	assert.NoError(t, err)
	assert.Contains(t, string(body), "상품 목록")
}

func TestFetchWithRandomHeadersConvertsCharset(t *testing.T) {
	httpmock.ActivateNonDefault(client)
	defer httpmock.DeactivateAndReset()

	// "한글" encoded as EUC-KR
	eucKR := []byte{0xC7, 0xD1, 0xB1, 0xDB}
	resp := httpmock.NewBytesResponse(200, eucKR)
	resp.Header.Set("Content-Type", "text/html; charset=euc-kr")
	httpmock.RegisterResponder("GET", "https://shop.example.com/euckr",
		httpmock.ResponderFromResponse(resp))

	reader, err := FetchWithRandomHeaders(context.Background(), "https://shop.example.com/euckr")
	assert.NoError(t, err)

	body, err := io.ReadAll(reader)
	assert.NoError(t, err)
	assert.Equal(t, "한글", string(body))
}

func TestFetchWithRandomHeadersRateLimited(t *testing.T) {
	httpmock.ActivateNonDefault(client)
	defer httpmock.DeactivateAndReset()

	resp := httpmock.NewStringResponse(http.StatusTooManyRequests, "")
	resp.Header.Set("Retry-After", "120")
	httpmock.RegisterResponder("GET", "https://shop.example.com/blocked",
		httpmock.ResponderFromResponse(resp))

	_, err := FetchWithRandomHeaders(context.Background(), "https://shop.example.com/blocked")
	assert.Error(t, err)

	rateErr, ok := err.(*ErrRateLimited)
	assert.True(t, ok)
	assert.Equal(t, "120", rateErr.RetryAfter)
}

func TestFetchWithRandomHeadersBadStatus(t *testing.T) {
	httpmock.ActivateNonDefault(client)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "https://shop.example.com/broken",
		httpmock.NewStringResponder(500, ""))

	_, err := FetchWithRandomHeaders(context.Background(), "https://shop.example.com/broken")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code")
}
