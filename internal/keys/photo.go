package keys

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".webp": {},
}

// IsImageExt reports whether ext (with leading dot) is an accepted photo type.
func IsImageExt(ext string) bool {
	_, ok := imageExtensions[strings.ToLower(ext)]
	return ok
}

// Ext returns the lowercased extension of a file name.
func Ext(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// shopFolder hashes the shop name so arbitrary names map to safe path segments.
func shopFolder(shop string) string {
	sum := md5.Sum([]byte(shop))
	return hex.EncodeToString(sum[:])
}

// Photo returns the object key for a shop photo:
// {owner}/{md5(shop)}/{unix}{ext}, or {owner}/{unix}{ext} when shop is empty.
func Photo(owner uuid.UUID, shop string, at time.Time, ext string) string {
	name := fmt.Sprintf("%d%s", at.Unix(), ext)
	if shop == "" {
		return fmt.Sprintf("%s/%s", owner, name)
	}
	return fmt.Sprintf("%s/%s/%s", owner, shopFolder(shop), name)
}

// PublicURL builds the public URL of an object in bucket.
func PublicURL(base, bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(base, "/"), bucket, key)
}

// FromURL extracts the object key from a public URL of bucket. The second
// result is false for URLs that do not point into the bucket.
func FromURL(rawURL, bucket string) (string, bool) {
	segment := "/" + bucket + "/"
	idx := strings.Index(rawURL, segment)
	if idx == -1 {
		return "", false
	}
	key := rawURL[idx+len(segment):]
	if q := strings.IndexByte(key, '?'); q != -1 {
		key = key[:q]
	}
	key, err := url.PathUnescape(key)
	if err != nil || key == "" {
		return "", false
	}
	return key, true
}

// Owner returns the user id encoded as the first segment of a photo key.
func Owner(key string) (uuid.UUID, bool) {
	first, _, _ := strings.Cut(strings.TrimPrefix(key, "/"), "/")
	id, err := uuid.Parse(first)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
