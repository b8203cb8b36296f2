package catalog

// Category classifies a known failure mode.
type Category string

const (
	CategoryConnectivity   Category = "connectivity"
	CategoryAuthentication Category = "authentication"
	CategoryPermission     Category = "permission"
	CategoryDataQuality    Category = "data_quality"
	CategoryTimeout        Category = "timeout"
	CategoryResource       Category = "resource"
	CategoryConfiguration  Category = "configuration"
	CategorySchema         Category = "schema"
	CategoryMissingData    Category = "missing_data"
	CategoryQuota          Category = "quota"
	CategoryUnknown        Category = "unknown"
)

// Severity grades how urgent a failure mode is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Entry is one curated description of a known pipeline failure pattern
// with remediation guidance. Entries are immutable after catalog load;
// matchers hand out pointers into the catalog and must never mutate them.
type Entry struct {
	// ID is the unique identifier for this entry.
	ID string `json:"id"`

	// Category is the failure classification.
	Category Category `json:"category"`

	// Severity grades the typical impact.
	Severity Severity `json:"severity"`

	// Title is a short human-readable name.
	Title string `json:"title"`

	// Description explains the failure mode.
	Description string `json:"description"`

	// Pattern is a regular expression matched case-insensitively
	// against error messages. Alternation covers message variants.
	Pattern string `json:"pattern"`

	// Causes lists known root causes, most common first.
	Causes []string `json:"causes"`

	// Solutions lists remediation steps ordered by likelihood.
	Solutions []string `json:"solutions"`

	// Prevention lists measures that avoid a recurrence.
	Prevention []string `json:"prevention"`

	// EstimatedFixTime is a free-text estimate, not machine-parsed.
	EstimatedFixTime string `json:"estimated_fix_time"`

	// Documentation holds reference URLs.
	Documentation []string `json:"documentation"`
}

// Document renders the entry as one rich text document for embedding.
// Title, category, causes and solutions are all folded in so semantic
// search can match on any of them.
func (e *Entry) Document() string {
	return "Error: " + e.Title + ". " +
		"Category: " + string(e.Category) + ". " +
		"Severity: " + string(e.Severity) + ". " +
		"Description: " + e.Description + " " +
		"Common causes: " + joinSentences(e.Causes) + ". " +
		"Solutions: " + joinSentences(e.Solutions) + ". " +
		"Error patterns: " + e.Pattern
}

func joinSentences(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ". "
		}
		out += p
	}
	return out
}
