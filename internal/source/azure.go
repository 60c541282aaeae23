package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// SignEndpoint is the SAS token service fronting the Azure mirrors.
// It answers GET ?href=<blob-url> with {"href": "<signed-url>"}.
var SignEndpoint = "https://planetarycomputer.microsoft.com/api/sas/v1/sign"

// SignAzure exchanges a bare Azure blob URL for a signed one. The
// substitution is confined to the "azure" source name; downstream
// components treat the signed URL like any other.
func SignAzure(ctx context.Context, client *http.Client, blobURL string) (string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	endpoint := SignEndpoint + "?href=" + url.QueryEscape(blobURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sign azure url: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sign azure url: HTTP %d from %s", resp.StatusCode, SignEndpoint)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("sign azure url: %w", err)
	}
	var signed struct {
		Href string `json:"href"`
	}
	if err := json.Unmarshal(body, &signed); err != nil {
		return "", fmt.Errorf("parse signing response: %w", err)
	}
	if signed.Href == "" {
		return "", fmt.Errorf("signing response carried no href")
	}
	return signed.Href, nil
}
