package upload

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// DefaultImgBBURL is the imgbb upload endpoint.
const DefaultImgBBURL = "https://api.imgbb.com/1/upload"

// ImgBB uploads through the imgbb HTTP API: a form POST carrying the key and
// the base64 image, answered with JSON holding display_url or url.
type ImgBB struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewImgBB(endpoint, apiKey string, timeout time.Duration) *ImgBB {
	if endpoint == "" {
		endpoint = DefaultImgBBURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ImgBB{endpoint: endpoint, apiKey: apiKey, client: &http.Client{Timeout: timeout}}
}

type imgbbResponse struct {
	Data struct {
		DisplayURL string `json:"display_url"`
		URL        string `json:"url"`
	} `json:"data"`
}

func (u *ImgBB) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	form := url.Values{}
	form.Set("key", u.apiKey)
	form.Set("image", base64.StdEncoding.EncodeToString(data))
	if filename != "" {
		form.Set("name", strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", failed("imgbb", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := u.client.Do(req)
	if err != nil {
		return "", failed("imgbb", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", failed("imgbb", fmt.Errorf("status %d", resp.StatusCode))
	}
	var body imgbbResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", failed("imgbb", err)
	}
	link := body.Data.DisplayURL
	if link == "" {
		link = body.Data.URL
	}
	if link == "" {
		return "", failed("imgbb", fmt.Errorf("response carried no url"))
	}
	succeeded("imgbb")
	return link, nil
}
