package utils

import "net/http"

// DefaultUserAgent is sent when no user agent is configured. Finance pages
// reject obvious automated clients.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:135.0) Gecko/20100101 Firefox/135.0"

// SetBrowserHeaders makes an outbound request look like a page load from a
// desktop browser.
func SetBrowserHeaders(req *http.Request, userAgent string) {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Accept-Encoding", AcceptEncoding)
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
}

// SetJSONHeaders is SetBrowserHeaders for XHR-style API calls.
func SetJSONHeaders(req *http.Request, userAgent string) {
	SetBrowserHeaders(req, userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
}
