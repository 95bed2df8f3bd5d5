package searchindex

import (
	"reflect"
	"testing"

	"shelfsync/internal/core/book"
)

func corpus() []book.Record {
	return []book.Record{
		{ID: "1", Title: "Harry Potter and the Sorcerer's Stone", Author: "J.K. Rowling", Description: "A boy wizard.", Genre: []string{"Fantasy"}},
		{ID: "2", Title: "The Hobbit", Author: "J.R.R. Tolkien", Description: "A hobbit goes on an adventure with a wizard.", Genre: []string{"Fantasy", "Classic"}},
		{ID: "3", Title: "Gone Girl", Author: "Gillian Flynn", Description: "A marriage gone wrong.", Genre: []string{"Thriller"}},
		{ID: "4", Title: "Dune", Author: "Frank Herbert", Description: "Spice, sand and politics.", Genre: []string{"Sci-Fi"}},
		{ID: "5", Title: "Wizard and Glass", Author: "Stephen King", Description: "", Genre: []string{"Fantasy"}},
	}
}

func built(recs []book.Record) *Index {
	ix := New()
	ix.Build(recs)
	return ix
}

func ids(rs []Result) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Record.ID
	}
	return out
}

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"potter", "poter", 1},
		{"flaw", "lawn", 2},
		{"café", "cafe", 1},
	}
	for _, c := range cases {
		if got := Levenshtein([]rune(c.a), []rune(c.b)); got != c.want {
			t.Fatalf("Levenshtein(%q,%q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
	if withinDistance([]rune("ab"), []rune("abcdef"), 2) {
		t.Fatalf("length prefilter should reject")
	}
}

func TestEmptyQueryReturnsNothing(t *testing.T) {
	ix := built(corpus())
	for _, q := range []string{"", "   ", "!?", "a"} {
		if got := ix.Search(q, DefaultOptions()); len(got) != 0 {
			t.Fatalf("Search(%q) = %v, want empty", q, ids(got))
		}
	}
	if got := New().Search("wizard", DefaultOptions()); got != nil {
		t.Fatalf("uninitialized index should return nil")
	}
}

func TestTitleAndAuthorBoostRanking(t *testing.T) {
	ix := built(corpus())
	got := ids(ix.Search("wizard", Options{Limit: 10, ExactBoost: 2, TitleBoost: 1.5, AuthorBoost: 1.3}))
	// title hit outranks description hits, equal description hits keep insertion order
	want := []string{"5", "1", "2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ranking = %v, want %v", got, want)
	}

	got = ids(ix.Search("king", DefaultOptions()))
	if len(got) == 0 || got[0] != "5" {
		t.Fatalf("author match should rank first, got %v", got)
	}
}

func TestScoreFormula(t *testing.T) {
	ix := built([]book.Record{{ID: "x", Title: "Dune", Author: "Frank Herbert", Description: "dune dunes"}})
	res := ix.Search("dune", Options{Limit: 5, ExactBoost: 2, TitleBoost: 1.5, AuthorBoost: 1.3})
	if len(res) != 1 {
		t.Fatalf("results = %v", res)
	}
	// exact 2*2 + substring 3 + title 1.5 + coverage 1/1*2
	if want := 4.0 + 3 + 1.5 + 2; res[0].Score != want {
		t.Fatalf("score = %v, want %v", res[0].Score, want)
	}
}

func TestFuzzyExpandsCandidates(t *testing.T) {
	ix := built(corpus())
	if got := ix.Search("wizar", Options{Limit: 5}); len(got) != 0 {
		t.Fatalf("fuzzy disabled should miss, got %v", ids(got))
	}
	got := ix.Search("wizar", DefaultOptions())
	if len(got) != 3 {
		t.Fatalf("fuzzy should reach every wizard book, got %v", ids(got))
	}
	for _, r := range got {
		if r.Score <= 0 {
			t.Fatalf("fuzzy candidate kept with score %v", r.Score)
		}
	}
}

func TestFuzzyOnlyCandidatesAreDropped(t *testing.T) {
	ix := built([]book.Record{
		{ID: "1", Title: "Go to the Sea", Author: "A"},
		{ID: "2", Title: "Of Mice", Author: "B"},
	})
	if got := ix.Search("qq", DefaultOptions()); len(got) != 0 {
		t.Fatalf("zero score candidates must be dropped, got %v", ids(got))
	}
	if got := built(corpus()).Search("potterr", DefaultOptions()); len(got) != 0 {
		t.Fatalf("misspelling with no substring credit should miss, got %v", ids(got))
	}
}

func TestLimitAndDeterminism(t *testing.T) {
	ix := built(corpus())
	first := ids(ix.Search("fantasy wizard", Options{Limit: 2, Fuzzy: true}))
	if len(first) != 2 {
		t.Fatalf("limit not applied: %v", first)
	}
	for i := 0; i < 20; i++ {
		if again := ids(ix.Search("fantasy wizard", Options{Limit: 2, Fuzzy: true})); !reflect.DeepEqual(again, first) {
			t.Fatalf("search not reproducible: %v vs %v", again, first)
		}
	}
}

func TestBuildIsIdempotentAndReplaces(t *testing.T) {
	a := built(corpus())
	b := built(corpus())
	b.Build(corpus())
	if !reflect.DeepEqual(a.Stats(), b.Stats()) || !reflect.DeepEqual(a.vocab, b.vocab) {
		t.Fatalf("rebuild with same input should match")
	}
	b.Build(corpus()[:1])
	if st := b.Stats(); st.Books != 1 {
		t.Fatalf("build should replace, stats=%+v", st)
	}
	if got := b.Search("hobbit", DefaultOptions()); len(got) != 0 {
		t.Fatalf("old records leaked after rebuild")
	}
}

func TestMergeAddsOnlyUnseen(t *testing.T) {
	ix := built(corpus()[:2])
	n := ix.Merge([]book.Record{corpus()[1], corpus()[2]})
	if n != 1 || ix.Stats().Books != 3 {
		t.Fatalf("merge added %d, books=%d", n, ix.Stats().Books)
	}
	if got := ids(ix.Search("gone", DefaultOptions())); len(got) == 0 || got[0] != "3" {
		t.Fatalf("merged record not searchable: %v", got)
	}
}

func TestSuggest(t *testing.T) {
	ix := built(corpus())
	if got := ix.Suggest("w", 5); got != nil {
		t.Fatalf("short prefix should give nothing, got %v", got)
	}
	got := ix.Suggest("Wi", 5)
	if !reflect.DeepEqual(got, []string{"with", "wizard"}) {
		t.Fatalf("Suggest = %v", got)
	}
	if got := ix.Suggest("wizard", 5); len(got) != 0 {
		t.Fatalf("exact word should not suggest itself: %v", got)
	}
}

func TestResetClears(t *testing.T) {
	ix := built(corpus())
	ix.Reset()
	if st := ix.Stats(); st.Initialized || st.Books != 0 || st.Words != 0 {
		t.Fatalf("reset stats = %+v", st)
	}
}
