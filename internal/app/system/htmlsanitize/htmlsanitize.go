// Package htmlsanitize strips dangerous markup from user-supplied rich
// text before it is stored (project and task descriptions).
package htmlsanitize

import "github.com/microcosm-cc/bluemonday"

// policy allows basic formatting while removing scripts, event handlers,
// and javascript: URLs. Built once; bluemonday policies are safe for
// concurrent use.
var policy = bluemonday.UGCPolicy()

// Sanitize returns s with unsafe HTML removed. Plain text passes through
// unchanged.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return policy.Sanitize(s)
}

// StripTags removes all markup, leaving only text content. Used for
// fields that must never contain HTML, such as project tags.
var strict = bluemonday.StrictPolicy()

func StripTags(s string) string {
	if s == "" {
		return ""
	}
	return strict.Sanitize(s)
}
