package auth

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var ErrBadCredentials = errors.New("invalid username or password")

const (
	// wpPrefix marks bcrypt hashes over the HMAC-SHA384 digest of the password.
	wpPrefix  = "$wp"
	wpHMACKey = "wp-sha384"

	phpassItoa64 = "./0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// HashPassword produces a hash in the host's current "$wp$2..." format.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(preHash(password)), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return wpPrefix + string(hash), nil
}

// CheckPassword compares password against a stored user hash. Accepted
// formats: "$wp$2y$..." pre-hashed bcrypt, plain bcrypt, phpass portable
// ("$P$", "$H$") and bare md5 hex from very old installs.
func CheckPassword(hash, password string) error {
	var ok bool
	switch {
	case hash == "":
	case strings.HasPrefix(hash, wpPrefix+"$2"):
		ok = bcrypt.CompareHashAndPassword([]byte(hash[len(wpPrefix):]), []byte(preHash(password))) == nil
	case strings.HasPrefix(hash, "$2"):
		ok = bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	case strings.HasPrefix(hash, "$P$"), strings.HasPrefix(hash, "$H$"):
		computed := phpassCrypt(password, hash)
		ok = computed != "" && subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1
	case len(hash) == 32:
		sum := md5.Sum([]byte(password))
		ok = subtle.ConstantTimeCompare([]byte(hex.EncodeToString(sum[:])), []byte(strings.ToLower(hash))) == 1
	}
	if !ok {
		return ErrBadCredentials
	}
	return nil
}

func preHash(password string) string {
	mac := hmac.New(sha512.New384, []byte(wpHMACKey))
	mac.Write([]byte(password))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// phpassCrypt recomputes a portable phpass hash for password using the
// setting (prefix, cost and salt) of stored. Returns "" for a bad setting.
func phpassCrypt(password, stored string) string {
	if len(stored) < 12 {
		return ""
	}
	countLog2 := strings.IndexByte(phpassItoa64, stored[3])
	if countLog2 < 7 || countLog2 > 30 {
		return ""
	}
	salt := stored[4:12]

	sum := md5.Sum([]byte(salt + password))
	digest := sum[:]
	for count := 1 << countLog2; count > 0; count-- {
		sum = md5.Sum(append(digest, password...))
		digest = sum[:]
	}
	return stored[:12] + phpassEncode(digest)
}

func phpassEncode(input []byte) string {
	var out strings.Builder
	count := len(input)
	for i := 0; i < count; {
		value := int(input[i])
		i++
		out.WriteByte(phpassItoa64[value&0x3f])
		if i < count {
			value |= int(input[i]) << 8
		}
		out.WriteByte(phpassItoa64[(value>>6)&0x3f])
		if i >= count {
			break
		}
		i++
		if i < count {
			value |= int(input[i]) << 16
		}
		out.WriteByte(phpassItoa64[(value>>12)&0x3f])
		if i >= count {
			break
		}
		i++
		out.WriteByte(phpassItoa64[(value>>18)&0x3f])
	}
	return out.String()
}
