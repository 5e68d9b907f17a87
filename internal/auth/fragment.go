package auth

import (
	"net/url"
	"strings"
)

const accessTokenKey = "access_token"

// ExtractFromFragment returns the access_token value carried by a redirect URL fragment.
//
// The fragment is a list of &-joined key=value pairs, with or without the leading '#'.
// Values are percent-decoded; '+' is kept as is. Empty items, items without '=' and
// items that fail to decode are skipped. ok is false when no non-empty token is present.
func ExtractFromFragment(fragment string) (string, bool) {
	fragment = strings.TrimPrefix(strings.TrimSpace(fragment), "#")

	for item := range strings.SplitSeq(fragment, "&") {
		rawKey, rawValue, found := strings.Cut(item, "=")
		if item == "" || !found {
			continue
		}

		key, err := url.PathUnescape(rawKey)
		if err != nil || key != accessTokenKey {
			continue
		}

		value, err := url.PathUnescape(rawValue)
		if err != nil || value == "" {
			continue
		}
		return value, true
	}

	return "", false
}

// ExtractFromURL extracts the token from a full redirect URL such as one pasted from the browser address bar.
func ExtractFromURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	if _, fragment, found := strings.Cut(raw, "#"); found {
		return ExtractFromFragment(fragment)
	}

	// some browsers hand back the pairs as a query string instead
	if u, err := url.Parse(raw); err == nil && u.RawQuery != "" {
		return ExtractFromFragment(u.RawQuery)
	}

	return ExtractFromFragment(raw)
}
