package data

import (
	"net/url"
	"strings"

	"github.com/Zerg00s/extract-site-collection-url/internal/biz"
	"github.com/Zerg00s/extract-site-collection-url/pkg/utils"
)

const sharePointSuffix = ".sharepoint.com"

// Path prefixes that name a site collection, in priority order. Anything
// else under the host belongs to the root site collection.
var sitePathPrefixes = []string{"/sites/", "/teams/", "/personal/"}

type siteExtractor struct{}

// NewSiteExtractor returns the SharePoint site-collection extractor. It is
// stateless and safe for concurrent use.
func NewSiteExtractor() biz.SiteExtractor {
	return &siteExtractor{}
}

// Extract classifies one raw line. Valid lines reduce to
// scheme://host[/sites|/teams|/personal/<segment>] with the input's casing
// preserved (the parser canonicalizes only the scheme). Failures carry one
// of the biz.Reason* strings; only the parse failure echoes the trimmed
// input into SiteCollection.
func (e *siteExtractor) Extract(rawLine string) biz.ExtractionResult {
	trimmed := utils.TrimTrailingSlashes(rawLine)
	if trimmed == "" {
		return failure(rawLine, biz.ReasonEmptyURL)
	}
	if !utils.HasHTTPScheme(trimmed) {
		return failure(rawLine, biz.ReasonMissingProtocol)
	}

	lower := strings.ToLower(trimmed)
	if !containsBounded(lower, sharePointSuffix) {
		if strings.Contains(lower, "sharepointcom") || containsBounded(lower, "sharepoint.co") {
			return failure(rawLine, biz.ReasonDomainTypo)
		}
		return failure(rawLine, biz.ReasonNotSharePoint)
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		res := failure(rawLine, biz.ReasonMalformedURL)
		// diagnostic echo so invalid rows still have something to show
		res.SiteCollection = trimmed
		return res
	}

	origin := utils.Origin(parsed)
	path := parsed.Path
	lowerPath := strings.ToLower(path)
	for _, prefix := range sitePathPrefixes {
		if !strings.HasPrefix(lowerPath, prefix) {
			continue
		}
		segment := path[len(prefix):]
		if i := strings.IndexByte(segment, '/'); i >= 0 {
			segment = segment[:i]
		}
		if segment == "" {
			break
		}
		return biz.ExtractionResult{
			Original:       rawLine,
			SiteCollection: origin + path[:len(prefix)+len(segment)],
		}
	}
	// bare host or unrecognized path: the root site collection
	return biz.ExtractionResult{Original: rawLine, SiteCollection: origin}
}

func failure(original, reason string) biz.ExtractionResult {
	return biz.ExtractionResult{Original: original, IsError: true, ErrorReason: reason}
}

// containsBounded reports whether sub occurs in s immediately followed by
// end-of-string or '/'. "sharepoint.com.evil.example" does not count.
func containsBounded(s, sub string) bool {
	for from := 0; ; {
		i := strings.Index(s[from:], sub)
		if i < 0 {
			return false
		}
		end := from + i + len(sub)
		if end == len(s) || s[end] == '/' {
			return true
		}
		from += i + 1
	}
}
