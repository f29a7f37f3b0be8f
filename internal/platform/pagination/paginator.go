package pagination

import (
	"net/url"
	"strconv"
)

// Page holds one window of a sorted slice plus navigation metadata.
type Page[T any] struct {
	Items      []T
	Total      int
	LinkHeader string
	NextCursor string
	PrevCursor string
}

// Paginate cuts the page following the item whose key equals cursor.Value.
// items must already be in display order and keys must be unique. A cursor
// of another type, or one pointing at a key no longer present, restarts from
// the first item.
func Paginate[T any](
	items []T,
	cursor Cursor,
	limit int,
	cursorType string,
	key func(T) string,
	baseURL string,
	query url.Values,
) Page[T] {
	total := len(items)
	if limit <= 0 {
		limit = defaultLimit
	}

	start := 0
	if cursor.Type == cursorType && cursor.Value != "" {
		for i, item := range items {
			if key(item) == cursor.Value {
				start = i + 1
				break
			}
		}
	}
	end := min(start+limit, total)
	window := items[start:end]

	var next, prev string
	if end < total && len(window) > 0 {
		next = Cursor{Type: cursorType, Value: key(window[len(window)-1])}.Encode()
	}
	if start > 0 {
		if start <= limit {
			prev = Cursor{Type: cursorType}.Encode()
		} else {
			prev = Cursor{Type: cursorType, Value: key(items[start-1-limit])}.Encode()
		}
	}

	q := cloneValues(query)
	q.Set("limit", strconv.Itoa(limit))

	return Page[T]{
		Items:      window,
		Total:      total,
		LinkHeader: BuildLinkHeader(baseURL, q, next, prev),
		NextCursor: next,
		PrevCursor: prev,
	}
}
