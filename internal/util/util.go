package util

import (
	"encoding/json"
	"net/url"
	"strings"
)

// JSONStringify returns the JSON encoded string for the value.
func JSONStringify(val any) string {
	buf, _ := json.Marshal(val)
	return string(buf)
}

// SliceContains returns true if the slice contains the value.
func SliceContains(slice []string, val string) bool {
	for _, item := range slice {
		if item == val {
			return true
		}
	}
	return false
}

// ToUserPass returns the user:password portion of a DSN from a URL.
func ToUserPass(u *url.URL) string {
	var dsn strings.Builder
	user := u.User.Username()
	pass, ok := u.User.Password()
	dsn.WriteString(user)
	if ok {
		dsn.WriteString(":")
		dsn.WriteString(pass)
	}
	return dsn.String()
}
