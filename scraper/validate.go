package scraper

import (
	"fmt"
	"strings"

	"github.com/umerzulfiqar021/Puppeteer/backend"
	"github.com/umerzulfiqar021/Puppeteer/config"
)

// blockReason inspects a rendered page for bot-block signals and returns a
// human-readable reason, or "" when the page looks usable. The signals are
// tunable heuristics; a false positive costs one fail-over attempt, not a
// wrong answer.
func blockReason(res *backend.RenderResult, cfg config.ValidationConfig) string {
	if res.Blocked {
		return "backend flagged the response as blocked"
	}

	title := strings.ToLower(res.Title)
	for _, marker := range cfg.BlockedTitleMarkers {
		if marker != "" && strings.Contains(title, marker) {
			return fmt.Sprintf("page title matches block marker %q", marker)
		}
	}

	finalURL := strings.ToLower(res.FinalURL)
	for _, marker := range cfg.ErrorURLMarkers {
		if marker != "" && strings.Contains(finalURL, strings.ToLower(marker)) {
			return fmt.Sprintf("redirected to error page (%q)", marker)
		}
	}

	body := strings.ToLower(res.HTML)
	for _, marker := range cfg.RobotTextMarkers {
		if marker != "" && strings.Contains(body, marker) {
			return fmt.Sprintf("page body matches robot-check marker %q", marker)
		}
	}

	if cfg.MinContentLength > 0 && res.ContentLength < cfg.MinContentLength {
		return fmt.Sprintf("rendered content too short (%d < %d bytes)",
			res.ContentLength, cfg.MinContentLength)
	}

	return ""
}
