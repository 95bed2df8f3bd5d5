// Package book folds heterogeneous upstream book payloads into one record shape
package book

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"shelfsync/internal/core/genre"
)

// UnknownAuthor is used when no author alias is present
const UnknownAuthor = "Unknown Author"

// Record is the normalized book every layer above the fetch client sees
type Record struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Genre       []string `json:"genre,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Sample      bool     `json:"sample,omitempty"`
}

// Genres returns the folded genre set of the record
func (r Record) Genres() genre.Set { return genre.Parse(r.Genre) }

// Detail is the single book view with the extra fields only the detail endpoint carries
type Detail struct {
	Record
	Publisher     string `json:"publisher,omitempty"`
	PublishedDate string `json:"publishedDate,omitempty"`
	ISBN          string `json:"isbn,omitempty"`
	PageCount     int    `json:"pageCount,omitempty"`
	Language      string `json:"language"`
}

// alias tables, first present key wins
var (
	idKeys          = []string{"id", "bookId", "book_id", "_id"}
	titleKeys       = []string{"title", "bookTitle", "Book-Title", "book_title", "name"}
	authorKeys      = []string{"author", "Book-Author", "creator", "by"}
	genreKeys       = []string{"genre", "genres", "categories", "subject"}
	imageKeys       = []string{"image_url", "Image-URL-L", "Image-URL-M", "Image-URL-S", "imageUrl", "image", "thumbnail", "coverImageUrl"}
	descriptionKeys = []string{"description", "Book-Description", "desc", "summary", "synopsis"}
	tagKeys         = []string{"moodTags", "tags"}

	publisherKeys = []string{"publisher", "pub", "publisherName"}
	publishedKeys = []string{"publishedDate", "published_date", "pubDate", "year", "publicationYear", "publication_year"}
	isbnKeys      = []string{"isbn", "ISBN", "isbn13"}
	pageKeys      = []string{"pageCount", "page_count", "pages"}
	languageKeys  = []string{"language", "lang"}
)

var marketplaceSuffix = regexp.MustCompile(`\s*\(Goodreads Author\)`)

// idSpace namespaces synthetic ids for records that arrive without one
var idSpace = uuid.MustParse("6f1d7c2e-3b0a-5c41-9e8f-2a7d4b6c1e90")

// FromRaw maps one upstream object to a Record
// it is total: any input, including nil, yields a record and never panics
func FromRaw(raw map[string]any) Record {
	r := Record{
		ID:          str(first(raw, idKeys)),
		Title:       str(first(raw, titleKeys)),
		Author:      Author(first(raw, authorKeys)),
		Description: str(first(raw, descriptionKeys)),
		ImageURL:    str(first(raw, imageKeys)),
		Genre:       genre.List(first(raw, genreKeys)),
		Tags:        genre.List(first(raw, tagKeys)),
	}
	if r.ID == "" {
		r.ID = SyntheticID(r.Title, r.Author)
	}
	return r
}

// DetailFromRaw maps a detail payload, unknown language defaults to English
func DetailFromRaw(raw map[string]any) Detail {
	d := Detail{
		Record:        FromRaw(raw),
		Publisher:     str(first(raw, publisherKeys)),
		PublishedDate: str(first(raw, publishedKeys)),
		ISBN:          str(first(raw, isbnKeys)),
		Language:      str(first(raw, languageKeys)),
	}
	if n, err := strconv.Atoi(str(first(raw, pageKeys))); err == nil {
		d.PageCount = n
	}
	if d.Language == "" {
		d.Language = "English"
	}
	return d
}

// FromRawList maps a slice of upstream objects, skipping non objects
func FromRawList(items []any) []Record {
	out := make([]Record, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, FromRaw(m))
	}
	return out
}

// Author returns a cleaned author name or UnknownAuthor
func Author(v any) string {
	a := marketplaceSuffix.ReplaceAllString(str(v), "")
	if a = strings.TrimSpace(a); a == "" {
		return UnknownAuthor
	}
	return a
}

// SyntheticID derives a stable id from title and author so repeated fetches agree
func SyntheticID(title, author string) string {
	return "tmp-" + uuid.NewSHA1(idSpace, []byte(title+"\x00"+author)).String()[:13]
}

// IDs returns the ids of recs in order
func IDs(recs []Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func first(raw map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
				continue
			}
			return v
		}
	}
	return nil
}

// str renders scalars, json numbers lose a trailing .0
func str(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case []any:
		parts := make([]string, 0, len(x))
		for _, p := range x {
			if s := str(p); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}
