package bookapi

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PageQuery selects one listing page
type PageQuery struct {
	Page    int
	Limit   int
	Filters map[string][]string
}

// Review is a normalized review row
type Review struct {
	ID        string    `json:"id"`
	BookID    string    `json:"bookId"`
	Comment   string    `json:"comment"`
	Rating    int       `json:"rating"`
	UserEmail string    `json:"userEmail,omitempty"`
	UserName  string    `json:"userName,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Pending   bool      `json:"pending,omitempty"`
}

// ReviewInput is the POST /api/reviews body
type ReviewInput struct {
	BookID  string `json:"bookId" validate:"required"`
	Comment string `json:"comment" validate:"required,max=4000"`
	Rating  int    `json:"rating" validate:"min=1,max=5"`
}

// reviewFromRaw folds the handful of reviewer field spellings seen upstream
func reviewFromRaw(m map[string]any) Review {
	r := Review{
		ID:        scalar(m["id"]),
		BookID:    firstScalar(m, "bookId", "book_id"),
		Comment:   firstScalar(m, "comment", "text", "body"),
		UserEmail: firstScalar(m, "userEmail", "email", "user_email"),
		UserName:  firstScalar(m, "userName", "displayName"),
	}
	if r.UserName == "" {
		if u, ok := m["user"].(map[string]any); ok {
			r.UserName = firstScalar(u, "name", "displayName", "username")
			if r.UserEmail == "" {
				r.UserEmail = scalar(u["email"])
			}
		}
	}
	if n, err := strconv.ParseFloat(scalar(m["rating"]), 64); err == nil {
		r.Rating = int(n)
	}
	if ts := firstScalar(m, "createdAt", "created_at"); ts != "" {
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, ts); err == nil {
				r.CreatedAt = t
				break
			}
		}
	}
	return r
}

func reviewsFrom(v any) []Review {
	var rows []any
	switch x := v.(type) {
	case []any:
		rows = x
	case map[string]any:
		for _, k := range []string{"items", "reviews", "data"} {
			if arr, ok := x[k].([]any); ok {
				rows = arr
				break
			}
		}
	}
	out := make([]Review, 0, len(rows))
	for _, it := range rows {
		if m, ok := it.(map[string]any); ok {
			out = append(out, reviewFromRaw(m))
		}
	}
	return out
}

func firstScalar(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := scalar(m[k]); s != "" {
			return s
		}
	}
	return ""
}

func scalar(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case map[string]any, []any:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}
