// Package media builds URLs for the external text-to-speech service. The
// engine never fetches media itself; the renderer resolves these URLs.
package media

import "net/url"

// AudioURL returns the TTS clip URL for a piece of text.
func AudioURL(baseURL, text, voice string) string {
	if text == "" {
		return ""
	}
	query := url.Values{}
	query.Set("text", text)
	query.Set("voice", voice)
	return baseURL + "?" + query.Encode()
}
