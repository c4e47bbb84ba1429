package webhook

import "strings"

// EventName builds the subscription key for a notification:
// "category.type".
func EventName(category, typ string) string {
	return category + "." + typ
}

// Subscribed reports whether an endpoint's subscription list covers the
// event. An empty list and the "*" wildcard match everything; a
// trailing ".*" matches every type within a category.
func Subscribed(event string, subs []string) bool {
	if len(subs) == 0 {
		return true
	}
	for _, sub := range subs {
		if sub == "*" || sub == event {
			return true
		}
		if prefix, ok := strings.CutSuffix(sub, ".*"); ok {
			if cat, _, found := strings.Cut(event, "."); found && cat == prefix {
				return true
			}
		}
	}
	return false
}
