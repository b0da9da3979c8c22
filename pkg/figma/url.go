package figma

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	// Anchored to ensure the entire URL matches the expected pattern and prevent bypass attacks.
	fileKeyPattern   = regexp.MustCompile(`^https?://(?:www\.)?figma\.com/(?:file|design|proto)/([A-Za-z0-9]+)(?:/|$|\?|#)`)
	rawKeyPattern    = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	queryNodePattern = regexp.MustCompile(`[?&]node-id=([^&#]*)`)
	pathNodePattern  = regexp.MustCompile(`/nodes/([^?#]+)`)
)

// ExtractFileKey extracts the unique file identifier from a Figma URL.
// Supports the /file/, /design/ and /proto/ URL patterns (e.g., figma.com/design/ABC123/Design-Name).
// Returns an error if the URL format is invalid or if the URL doesn't match the expected Figma domain pattern.
func ExtractFileKey(figmaURL string) (string, error) {
	// Match patterns like:
	// https://www.figma.com/file/ABC123/Design-Name
	// https://www.figma.com/design/ABC123/Design-Name
	matches := fileKeyPattern.FindStringSubmatch(figmaURL)

	if len(matches) < 2 {
		return "", fmt.Errorf("invalid Figma URL format: must be a valid figma.com URL with /file/, /design/ or /proto/ path")
	}

	return matches[1], nil
}

// ResolveFileKey accepts either a raw file key or a Figma file URL and returns the file key.
func ResolveFileKey(keyOrURL string) (string, error) {
	keyOrURL = strings.TrimSpace(keyOrURL)
	if rawKeyPattern.MatchString(keyOrURL) {
		return keyOrURL, nil
	}
	return ExtractFileKey(keyOrURL)
}

// ExtractNodeIDs extracts node IDs from a Figma URL. It understands the node-id query
// parameter, the legacy hash fragment (#123:456) and the /nodes/ path form. Multiple IDs are
// comma separated. The dash form used by share links (123-456) is normalized to 123:456.
// The result is deduplicated and keeps the order of appearance; an empty slice means the URL
// does not target any node.
func ExtractNodeIDs(figmaURL string) ([]string, error) {
	var raw string

	if m := queryNodePattern.FindStringSubmatch(figmaURL); m != nil {
		unescaped, err := url.QueryUnescape(m[1])
		if err != nil {
			return nil, fmt.Errorf("invalid node-id parameter %q: %w", m[1], err)
		}
		raw = unescaped
	} else if i := strings.IndexByte(figmaURL, '#'); i >= 0 {
		raw = figmaURL[i+1:]
	} else if m := pathNodePattern.FindStringSubmatch(figmaURL); m != nil {
		raw = m[1]
	}

	ids := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		id := NormalizeNodeID(part)
		if id != "" {
			ids = append(ids, id)
		}
	}

	return deduplicateNodeIDs(ids), nil
}

// NormalizeNodeID trims the ID and converts the dash form used in share links to the
// colon form used by the API.
func NormalizeNodeID(id string) string {
	return strings.ReplaceAll(strings.TrimSpace(id), "-", ":")
}

// deduplicateNodeIDs removes repeated IDs, preserving the first occurrence order.
func deduplicateNodeIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	result := make([]string, 0, len(ids))

	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}

	return result
}
