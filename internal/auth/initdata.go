// Package auth validates Telegram WebApp initData payloads.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// AuthLifetime is how long a signed payload stays valid. Stale initData can be
// replayed otherwise.
const AuthLifetime = 24 * time.Hour

// ErrUnauthorized is returned for every validation failure. The specific
// cause is wrapped for server-side logs but callers get a single outcome.
var ErrUnauthorized = errors.New("could not validate init data")

// TelegramUser is the identity embedded in the "user" field of initData.
type TelegramUser struct {
	ID              int64  `json:"id"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name,omitempty"`
	Username        string `json:"username,omitempty"`
	LanguageCode    string `json:"language_code,omitempty"`
	IsPremium       bool   `json:"is_premium,omitempty"`
	AllowsWriteToPM bool   `json:"allows_write_to_pm,omitempty"`
}

// ValidateInitData checks the signature and freshness of a raw initData query
// string against the bot token and returns the embedded user.
//
// Per the Telegram WebApp contract: the "hash" field is removed, the remaining
// pairs are sorted by key and joined as "key=value" lines, and the expected
// signature is HMAC-SHA256 of that string keyed with
// HMAC-SHA256(key="WebAppData", msg=botToken).
func ValidateInitData(initData, botToken string, now time.Time) (*TelegramUser, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed query string: %v", ErrUnauthorized, err)
	}

	receivedHash := values.Get("hash")
	if receivedHash == "" {
		return nil, fmt.Errorf("%w: no hash found in init data", ErrUnauthorized)
	}
	values.Del("hash")

	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: missing or invalid auth_date", ErrUnauthorized)
	}
	if now.Sub(time.Unix(authDate, 0)) > AuthLifetime {
		return nil, fmt.Errorf("%w: init data is outdated", ErrUnauthorized)
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+values.Get(k))
	}
	checkString := strings.Join(pairs, "\n")

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))
	secretKey := secret.Sum(nil)

	mac := hmac.New(sha256.New, secretKey)
	mac.Write([]byte(checkString))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(receivedHash)) {
		return nil, fmt.Errorf("%w: invalid hash signature", ErrUnauthorized)
	}

	userJSON := values.Get("user")
	if userJSON == "" {
		return nil, fmt.Errorf("%w: no user data found", ErrUnauthorized)
	}

	var user TelegramUser
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return nil, fmt.Errorf("%w: invalid user payload: %v", ErrUnauthorized, err)
	}

	return &user, nil
}
