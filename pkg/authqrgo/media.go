package authqrgo

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/authqr/operator/pkg/authqrgo/routing"
	"github.com/authqr/operator/pkg/authqrgo/routing/query"
	"github.com/authqr/operator/pkg/authqrgo/routing/response"
)

// MediaResolver turns attachment keys from alerts into public URLs on the
// object storage host.
type MediaResolver struct {
	BaseURL string
}

func NewMediaResolver(baseURL string) *MediaResolver {
	return &MediaResolver{BaseURL: strings.TrimRight(baseURL, "/")}
}

// Key reduces a stored reference to its bucket key. Older alerts store full
// URLs that already point into the bucket.
func (mr *MediaResolver) Key(ref string) string {
	ref = strings.TrimSpace(ref)
	if mr.BaseURL != "" && strings.HasPrefix(ref, mr.BaseURL+"/") {
		return strings.TrimPrefix(ref, mr.BaseURL+"/")
	}
	if !strings.Contains(ref, "://") {
		return strings.TrimLeft(ref, "/")
	}
	bucket := path.Base(mr.BaseURL)
	if bucket != "" && bucket != "." && bucket != "/" {
		if _, key, found := strings.Cut(ref, "/"+bucket+"/"); found {
			return key
		}
	}
	return ref
}

// URL returns the public URL for ref, or "" for an empty reference.
// References to other hosts are returned unchanged.
func (mr *MediaResolver) URL(ref string) string {
	key := mr.Key(ref)
	if key == "" {
		return ""
	}
	if strings.Contains(key, "://") {
		return key
	}
	if mr.BaseURL == "" {
		return key
	}
	return mr.BaseURL + "/" + key
}

// QRImageURL returns where the user's QR image can be fetched. A stored image
// on the backend wins; otherwise the external renderer draws the ciphertext.
func (c *Client) QRImageURL(qrPath, encryptedQR string, pixels int) (string, error) {
	if qrPath != "" {
		name := path.Base(strings.ReplaceAll(qrPath, "\\", "/"))
		return c.baseURL + fmt.Sprintf(string(routing.QRImageURL), url.PathEscape(name)), nil
	}
	if encryptedQR == "" {
		return "", fmt.Errorf("no qr path or payload to render")
	}
	encodedQuery, err := query.NewQRRendererQuery(pixels, encryptedQR).Encode()
	if err != nil {
		return "", err
	}
	return routing.QRRendererURL + "?" + string(encodedQuery), nil
}

// QRImageURLForUser picks the QR source from a logged-in end user record.
func (c *Client) QRImageURLForUser(user response.EndUser, pixels int) (string, error) {
	return c.QRImageURL(user.QRPath.Or(""), user.EncryptedQR.Or(""), pixels)
}
