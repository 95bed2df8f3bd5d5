// Package searchindex is an in-memory inverted index over book records with
// fuzzy, field boosted scoring
//
// An index is rebuilt wholesale. Building twice from the same input yields the
// same index, and equal scores are ordered by insertion order so repeated
// searches return the same list.
package searchindex

import (
	"sort"
	"strings"
	"sync"

	"shelfsync/internal/core/book"
	"shelfsync/internal/core/normalize"
)

// Options tunes a search
type Options struct {
	Limit       int
	Fuzzy       bool
	MaxDistance int
	ExactBoost  float64
	TitleBoost  float64
	AuthorBoost float64
}

// DefaultOptions returns limit 50, fuzzy on at distance 2, boosts 2 / 1.5 / 1.3
func DefaultOptions() Options {
	return Options{Limit: 50, Fuzzy: true, MaxDistance: 2, ExactBoost: 2, TitleBoost: 1.5, AuthorBoost: 1.3}
}

// Result is a scored hit
type Result struct {
	Record book.Record `json:"record"`
	Score  float64     `json:"score"`
}

// Stats describes the index size
type Stats struct {
	Books       int  `json:"books"`
	Words       int  `json:"words"`
	Initialized bool `json:"initialized"`
}

// entry is one indexed record; text is the folded searchable text with single spaces
type entry struct {
	rec    book.Record
	seq    int
	text   string
	words  []string
	title  string
	author string
}

// Index is safe for concurrent use
type Index struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	order    []*entry
	postings map[string][]*entry // token -> entries in insertion order
	vocab    []string            // sorted tokens
	vocabR   [][]rune
	built    bool
}

// New returns an empty, uninitialized index
func New() *Index {
	return &Index{entries: map[string]*entry{}, postings: map[string][]*entry{}}
}

// SearchableText is the concatenated title, author, description and genre of r
func SearchableText(r book.Record) string {
	return strings.TrimSpace(r.Title + " " + r.Author + " " + r.Description + " " + strings.Join(r.Genre, " "))
}

// Build replaces the whole index with recs; duplicate ids keep the first record
func (ix *Index) Build(recs []book.Record) {
	entries := make(map[string]*entry, len(recs))
	order := make([]*entry, 0, len(recs))
	postings := make(map[string][]*entry)

	for _, r := range recs {
		if _, dup := entries[r.ID]; dup {
			continue
		}
		words := normalize.Tokens(SearchableText(r))
		e := &entry{
			rec:    r,
			seq:    len(order),
			text:   strings.Join(words, " "),
			words:  words,
			title:  normalize.Fold(r.Title),
			author: normalize.Fold(r.Author),
		}
		entries[r.ID] = e
		order = append(order, e)
		seen := make(map[string]struct{}, len(words))
		for _, w := range words {
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			postings[w] = append(postings[w], e)
		}
	}

	vocab := make([]string, 0, len(postings))
	for w := range postings {
		vocab = append(vocab, w)
	}
	sort.Strings(vocab)
	vocabR := make([][]rune, len(vocab))
	for i, w := range vocab {
		vocabR[i] = []rune(w)
	}

	ix.mu.Lock()
	ix.entries, ix.order, ix.postings = entries, order, postings
	ix.vocab, ix.vocabR = vocab, vocabR
	ix.built = true
	ix.mu.Unlock()
}

// Merge rebuilds the index with the current records followed by unseen ones from recs
func (ix *Index) Merge(recs []book.Record) int {
	if len(recs) == 0 {
		return 0
	}
	cur := ix.Records()
	seen := make(map[string]struct{}, len(cur))
	for _, r := range cur {
		seen[r.ID] = struct{}{}
	}
	added := 0
	for _, r := range recs {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		cur = append(cur, r)
		added++
	}
	if added > 0 || !ix.Initialized() {
		ix.Build(cur)
	}
	return added
}

// Records returns the indexed records in insertion order
func (ix *Index) Records() []book.Record {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]book.Record, len(ix.order))
	for i, e := range ix.order {
		out[i] = e.rec
	}
	return out
}

// Initialized reports whether Build has run
func (ix *Index) Initialized() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.built
}

// Search scores every candidate and returns the best opts.Limit
// an empty or all punctuation query returns no results, nor do zero score candidates
func (ix *Index) Search(query string, opts Options) []Result {
	q := normalize.Tokens(query)
	if len(q) == 0 {
		return nil
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultOptions().Limit
	}
	if opts.MaxDistance <= 0 {
		opts.MaxDistance = 2
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if !ix.built {
		return nil
	}

	cands := make(map[*entry]struct{})
	for _, w := range q {
		for _, e := range ix.postings[w] {
			cands[e] = struct{}{}
		}
		if !opts.Fuzzy {
			continue
		}
		wr := []rune(w)
		for i, v := range ix.vocabR {
			if !withinDistance(wr, v, opts.MaxDistance) {
				continue
			}
			for _, e := range ix.postings[ix.vocab[i]] {
				cands[e] = struct{}{}
			}
		}
	}

	out := make([]scored, 0, len(cands))
	for e := range cands {
		// fuzzy candidates can earn nothing
		if sc := score(e, q, opts); sc > 0 {
			out = append(out, scored{e: e, score: sc})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].e.seq < out[j].e.seq
	})
	if len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	res := make([]Result, len(out))
	for i, s := range out {
		res[i] = Result{Record: s.e.rec, Score: s.score}
	}
	return res
}

type scored struct {
	e     *entry
	score float64
}

// score sums per token exact, substring, title and author credit plus a coverage bonus
func score(e *entry, q []string, opts Options) float64 {
	var s float64
	matched := 0
	for _, w := range q {
		exact := 0
		for _, t := range e.words {
			if t == w {
				exact++
			}
		}
		s += float64(exact) * opts.ExactBoost
		s += float64(strings.Count(e.text, w))
		if strings.Contains(e.title, w) {
			s += opts.TitleBoost
		}
		if strings.Contains(e.author, w) {
			s += opts.AuthorBoost
		}
		if strings.Contains(e.text, w) {
			matched++
		}
	}
	return s + float64(matched)/float64(len(q))*2
}

// Suggest returns up to n indexed words that extend prefix, in lexical order
// prefixes shorter than two runes get nothing
func (ix *Index) Suggest(prefix string, n int) []string {
	p := normalize.Fold(prefix)
	if len([]rune(p)) < 2 || n <= 0 {
		return nil
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	i := sort.SearchStrings(ix.vocab, p)
	var out []string
	for ; i < len(ix.vocab) && len(out) < n; i++ {
		w := ix.vocab[i]
		if !strings.HasPrefix(w, p) {
			break
		}
		if w != p {
			out = append(out, w)
		}
	}
	return out
}

// Stats reports index size
func (ix *Index) Stats() Stats {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return Stats{Books: len(ix.order), Words: len(ix.vocab), Initialized: ix.built}
}

// Reset drops everything and marks the index uninitialized
func (ix *Index) Reset() {
	ix.mu.Lock()
	ix.entries = map[string]*entry{}
	ix.order = nil
	ix.postings = map[string][]*entry{}
	ix.vocab, ix.vocabR = nil, nil
	ix.built = false
	ix.mu.Unlock()
}
