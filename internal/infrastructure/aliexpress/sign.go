package aliexpress

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// sign computes the request signature: HMAC-SHA256 over the parameters
// concatenated as key+value in ascending key order, hex-encoded uppercase.
func sign(params map[string]string, appSecret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteString(params[k])
	}

	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write([]byte(sb.String()))

	return strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))
}
