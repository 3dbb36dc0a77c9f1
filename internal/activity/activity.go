// Package activity aggregates parsed cookie logs.
package activity

import "github.com/JonMunkholm/cookielog/internal/schema"

// CookieCount is the number of log entries for one cookie.
type CookieCount struct {
	Cookie schema.Cookie `json:"cookie"`
	Count  int           `json:"count"`
}

// Count returns per-cookie occurrences among entries dated day, in order of
// each cookie's first appearance.
func Count(entries []schema.LogEntry, day schema.Date) []CookieCount {
	index := make(map[schema.Cookie]int)
	var counts []CookieCount

	for _, e := range entries {
		if e.Timestamp.Date != day {
			continue
		}
		i, ok := index[e.Cookie]
		if !ok {
			i = len(counts)
			index[e.Cookie] = i
			counts = append(counts, CookieCount{Cookie: e.Cookie})
		}
		counts[i].Count++
	}

	return counts
}

// MostActive returns every cookie that reaches the highest count on day, in
// first-seen order. Returns nil when no entry is dated day.
func MostActive(entries []schema.LogEntry, day schema.Date) []schema.Cookie {
	return Max(Count(entries, day))
}

// Max returns the cookies whose count equals the highest count in counts.
func Max(counts []CookieCount) []schema.Cookie {
	highest := 0
	for _, c := range counts {
		highest = max(highest, c.Count)
	}

	var cookies []schema.Cookie
	for _, c := range counts {
		if c.Count == highest && highest > 0 {
			cookies = append(cookies, c.Cookie)
		}
	}
	return cookies
}
