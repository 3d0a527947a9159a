package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"

	"github.com/pkg/errors"
)

// BuildHMACSignature computes the level-2 request signature: HMAC-SHA256
// over timestamp+method+path+body, keyed by the base64url API secret, with
// the digest emitted as padded base64url. An empty body contributes nothing.
func BuildHMACSignature(secret string, timestamp int64, method, path, body string) (string, error) {
	key, err := base64.URLEncoding.DecodeString(secret)
	if err != nil {
		return "", errors.Wrap(err, "decode api secret")
	}

	message := strconv.FormatInt(timestamp, 10) + method + path + body
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(message))

	return base64.URLEncoding.EncodeToString(mac.Sum(nil)), nil
}
