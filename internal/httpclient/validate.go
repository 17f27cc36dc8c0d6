package httpclient

import (
	"io"
	"net/http"

	"github.com/ternarybob/jora/internal/models"
)

// Validate passes a 200 response through unchanged. Any other status is
// consumed: the body is read in full and returned verbatim in a
// *models.RequestFailedError, and the response body is closed.
func Validate(resp *http.Response) (*http.Response, error) {
	if resp.StatusCode == http.StatusOK {
		return resp, nil
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	failed := &models.RequestFailedError{
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
	if resp.Request != nil {
		failed.Method = resp.Request.Method
		if resp.Request.URL != nil {
			failed.URL = redactURL(resp.Request.URL)
		}
	}
	return nil, failed
}
