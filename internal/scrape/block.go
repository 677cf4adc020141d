package scrape

import (
	"net/http"
	"strings"
)

// BlockType names the anti-bot measure that kept a page from rendering
// article text.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
	BlockJSShell    BlockType = "js_shell"
)

var captchaMarkers = []string{"captcha", "recaptcha", "hcaptcha"}

var cloudflareMarkers = []string{"checking your browser", "cf-browser-verification"}

// DetectBlock inspects a fetched page for anti-bot interstitials. News
// sites behind such protection yield challenge shells instead of article
// text; treating those as article bodies would poison body hashes.
func DetectBlock(resp *http.Response, body []byte) (bool, BlockType) {
	if resp == nil {
		return false, BlockNone
	}

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusServiceUnavailable {
		if resp.Header.Get("cf-ray") != "" ||
			resp.Header.Get("cf-cache-status") != "" ||
			resp.Header.Get("server") == "cloudflare" {
			return true, BlockCloudflare
		}
	}

	lower := strings.ToLower(string(body))
	for _, marker := range cloudflareMarkers {
		if strings.Contains(lower, marker) {
			return true, BlockCloudflare
		}
	}
	if strings.Contains(lower, "cloudflare") && strings.Contains(lower, "challenge") {
		return true, BlockCloudflare
	}
	for _, marker := range captchaMarkers {
		if strings.Contains(lower, marker) {
			return true, BlockCaptcha
		}
	}

	// A tiny body that immediately defers to script is a JS-only shell.
	if len(body) < 2000 {
		if strings.Contains(lower, "<noscript") && strings.Contains(lower, "javascript") {
			return true, BlockJSShell
		}
		if strings.Contains(lower, `meta http-equiv="refresh"`) {
			return true, BlockJSShell
		}
	}

	return false, BlockNone
}
