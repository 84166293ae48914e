package cache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// GenerateKey creates a cache key with prefix and ID.
func GenerateKey(prefix string, id string) string {
	return fmt.Sprintf("%s:%s", prefix, id)
}

// HashKey generates MD5 hash of a key.
func HashKey(key string) string {
	hasher := md5.New()
	hasher.Write([]byte(key))
	return hex.EncodeToString(hasher.Sum(nil))
}

// RequestKey identifies an HTTP request by its URL and headers.
// Headers are sorted so the key does not depend on map iteration order.
func RequestKey(url string, headers map[string]string) string {
	names := make([]string, 0, len(headers))
	for k := range headers {
		names = append(names, k)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(url)
	for _, k := range names {
		b.WriteString("|")
		b.WriteString(k)
		b.WriteString(":")
		b.WriteString(headers[k])
	}
	return HashKey(b.String())
}
