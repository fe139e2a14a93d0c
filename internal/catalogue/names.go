package catalogue

import "strings"

// schemaPrefix is the schema prefix stripped from table names for display
// and for the review script.
const schemaPrefix = "dbo."

// shortDescriptionLimit is the cut-off applied to long descriptions in
// summary views.
const shortDescriptionLimit = 100

// ShortTableName strips the schema prefix from a fully-qualified table name.
func ShortTableName(fullName string) string {
	return strings.TrimPrefix(fullName, schemaPrefix)
}

// ShortDescription truncates a long description to a displayable length.
func ShortDescription(description string) string {
	runes := []rune(description)
	if len(runes) > shortDescriptionLimit {
		return string(runes[:shortDescriptionLimit]) + "..."
	}
	return description
}

// ShortUUID masks the leading groups of a UUID string, keeping the tail that
// is enough to tell entries apart in a listing.
func ShortUUID(fullUUID string) string {
	if len(fullUUID) > 24 {
		return "∗∗∗-" + fullUUID[24:]
	}
	return fullUUID
}
