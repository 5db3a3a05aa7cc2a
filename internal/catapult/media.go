package catapult

import (
	"context"
	"fmt"
	"net/http"
	"os"
)

// UploadMedia pushes a local file to the account's media storage under
// the given name. The name becomes the public media identifier.
func (c *Client) UploadMedia(ctx context.Context, name, filePath, contentType string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("catapult: open media file: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return fmt.Errorf("catapult: stat media file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.apiURL+c.userPath("media", name), f)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.token, c.secret)
	req.ContentLength = st.Size()
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	return nil
}
