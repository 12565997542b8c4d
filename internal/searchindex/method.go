package searchindex

import "strings"

var httpMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}

// HTTPMethod returns the HTTP method of an API reference page, or "".
// The explicit method field wins; otherwise a title such as "POST /users"
// is recognised.
func (r Record) HTTPMethod() string {
	if r.Method != "" {
		for _, m := range httpMethods {
			if r.Method == m {
				return m
			}
		}
		return ""
	}
	first, _, ok := strings.Cut(r.Title, " ")
	if !ok {
		return ""
	}
	first = strings.ToUpper(first)
	for _, m := range httpMethods {
		if first == m {
			return m
		}
	}
	return ""
}
