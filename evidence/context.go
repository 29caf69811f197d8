package evidence

import "strings"

// Context carries the configuration one upload runs under: where the upload
// attaches and how the stored document resolves to a public URL. It replaces
// ambient page state with explicit values injected at construction time.
type Context struct {
	// ReportID and FindingID identify the attachment target. At most one is
	// used per upload; FindingID wins when both are set. With neither set an
	// upload aborts before any network call.
	ReportID  *int
	FindingID *int
	// MediaBaseURL prefixes the stored document path to form the final image
	// source URL. Joined by plain concatenation.
	MediaBaseURL string
}

// Target returns the variable name and id of the attachment target, or
// ok=false when neither a finding nor a report id is configured.
func (c Context) Target() (key string, id int, ok bool) {
	if c.FindingID != nil {
		return "finding", *c.FindingID, true
	}
	if c.ReportID != nil {
		return "report", *c.ReportID, true
	}
	return "", 0, false
}

// MediaURL builds the public URL of a stored document path.
func (c Context) MediaURL(document string) string {
	return c.MediaBaseURL + document
}

// Validate checks the context is usable for resolving URLs.
func (c Context) Validate() error {
	if strings.TrimSpace(c.MediaBaseURL) == "" {
		return errMissingMediaBaseURL
	}
	return nil
}
