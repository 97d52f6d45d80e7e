package biz

// Failure reasons surfaced per line. These are display strings: the
// browser UI shows them verbatim next to the offending input.
const (
	ReasonEmptyURL        = "Empty URL"
	ReasonMissingProtocol = "Missing protocol (http/https)"
	ReasonDomainTypo      = "Typo in domain (missing dot or incomplete)"
	ReasonNotSharePoint   = "Not a SharePoint URL"
	ReasonMalformedURL    = "Malformed URL"
)

// ExtractionResult classifies one raw input line. When IsError is false,
// SiteCollection holds the site collection root URL (no trailing slash, no
// path beyond the recognized prefix segment). On the "Malformed URL" failure
// only, SiteCollection echoes the trimmed input as a diagnostic; every other
// failure leaves it empty.
type ExtractionResult struct {
	Original       string `json:"original"`
	SiteCollection string `json:"siteCollection,omitempty"`
	IsError        bool   `json:"isError"`
	ErrorReason    string `json:"errorReason,omitempty"`
}

// BestEffort returns the string a display row should show for this result:
// the extracted value when present, the original input otherwise.
func (r ExtractionResult) BestEffort() string {
	if r.SiteCollection != "" {
		return r.SiteCollection
	}
	return r.Original
}

// UniqueEntry is one deduplicated site collection with its occurrence count.
// Keys are the exact extracted strings; no case folding is applied when
// grouping, only when sorting.
type UniqueEntry struct {
	SiteCollection string `json:"siteCollection"`
	Count          int    `json:"count"`
}

// Summary is the full output of one aggregation run. Results preserves
// input order; Unique is sorted ascending by case-insensitive comparison;
// UniqueInputCount counts distinct raw input lines after trimming and case
// folding (an independent dedup dimension from Unique).
type Summary struct {
	Results          []ExtractionResult `json:"results"`
	Unique           []UniqueEntry      `json:"unique"`
	UniqueInputCount int                `json:"uniqueInputCount"`
}

// SiteExtractor maps one raw line to its classification. Implementations
// must be pure: no I/O, no state across calls.
type SiteExtractor interface {
	Extract(rawLine string) ExtractionResult
}
