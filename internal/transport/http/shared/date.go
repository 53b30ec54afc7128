package shared

import "time"

// ParseDate accepts RFC3339 or YYYY-MM-DD, the latter in local time so a
// calendar date never shifts across midnight.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.ParseInLocation("2006-01-02", value, time.Local)
}
