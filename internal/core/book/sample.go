package book

// Samples is the labeled fallback set shown only when the very first load fails
// and nothing else is on screen; it is a development convenience
func Samples() []Record {
	return []Record{
		{
			ID:          "1",
			Title:       "The Stars Between Us",
			Author:      UnknownAuthor,
			Description: "A heart-tugging story about grief, growth, and finding light again.",
			Tags:        []string{"bittersweet", "emotional", "healing"},
			Sample:      true,
		},
		{
			ID:          "2",
			Title:       "Soft Chaos",
			Author:      UnknownAuthor,
			Description: "A dreamy romance full of late-night walks, tea, and deep stares.",
			Tags:        []string{"romantic", "gentle", "poetic"},
			Sample:      true,
		},
		{
			ID:          "3",
			Title:       "Rainy Daze",
			Author:      UnknownAuthor,
			Description: "A moody coming-of-age story perfect for rainy days and warm socks.",
			Tags:        []string{"melancholy", "comfort", "slow-burn"},
			Sample:      true,
		},
	}
}
