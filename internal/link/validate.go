package link

import (
	"net/url"
	"regexp"
)

var codeRe = regexp.MustCompile(`^[A-Za-z0-9]{6,8}$`)

// ValidateURL reports whether s is an absolute URL with a scheme and a host.
// Reachability is not checked.
func ValidateURL(s string) bool {
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// ValidateCode reports whether s is 6 to 8 ASCII letters or digits.
func ValidateCode(s string) bool {
	return codeRe.MatchString(s)
}
