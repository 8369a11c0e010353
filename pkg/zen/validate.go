package zen

import (
	"fmt"
	"regexp"
	"strings"
)

var schemePattern = regexp.MustCompile(`^([a-z0-9]+://)`)

// ValidateURL checks that url is an http:// or https:// address and strips a
// trailing slash.
func ValidateURL(url string) (string, error) {
	url = strings.TrimRight(url, "/")

	scheme := schemePattern.FindString(url)
	if scheme != "http://" && scheme != "https://" {
		return "", fmt.Errorf("%w: %s. Should be in the form https://hostname[:port] or http://hostname[:port]", ErrInvalidURL, url)
	}

	return url, nil
}
