package model

// TruncateString cuts a string down to the maximum length the target
// column can hold.
func TruncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength]
}
