package reviews

// SeedReviews returns the reviews a fresh table is loaded with.
func SeedReviews() []Review {
	return []Review{
		{
			MovieID:      101,
			ReviewerName: "user123",
			ReviewDate:   "2023-11-01",
			Content:      "A thrilling adventure with stunning visuals and a gripping storyline.",
			Rating:       5,
		},
		{
			MovieID:      102,
			ReviewerName: "user456",
			ReviewDate:   "2023-11-02",
			Content:      "An emotional journey with powerful performances and a memorable soundtrack.",
			Rating:       4,
		},
		{
			MovieID:      103,
			ReviewerName: "user789",
			ReviewDate:   "2023-11-03",
			Content:      "A unique and thought-provoking film that challenges conventions.",
			Rating:       4.5,
		},
	}
}
