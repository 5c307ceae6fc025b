package admin

// Seed is the sample data every new workspace starts from, plus the constant
// collections behind the read-only panels.
type Seed struct {
	Books   []Book         `json:"books"`
	Members []Member       `json:"members"`
	Loans   []Loan         `json:"loans"`
	Stats   []Stat         `json:"stats"`
	Trends  []MonthlyTrend `json:"trends"`
}

// DefaultSeed returns the built-in sample data.
func DefaultSeed() Seed {
	return Seed{
		Books: []Book{
			{ID: 1, Title: "React for Beginners", Author: "Alice Johnson", Category: "Fiction", Image: "https://placehold.co/100x140?text=React"},
			{ID: 2, Title: "TypeScript Handbook", Author: "Bob Smith", Category: "Educational", Image: "https://placehold.co/100x140?text=TS"},
			{ID: 3, Title: "Next.js in Action", Author: "Carol Lee", Category: "Fiction", Image: "https://placehold.co/100x140?text=Next.js"},
		},
		Members: []Member{
			{Name: "Jane Doe", Email: "jane@example.com", Role: "Librarian"},
			{Name: "John Smith", Email: "john@example.com", Role: "Member"},
			{Name: "Emily Davis", Email: "emily@example.com", Role: "Member"},
		},
		Loans: []Loan{
			{User: "Jane Doe", Book: "React for Beginners", Borrowed: "2025-05-10", Returned: "2025-05-15"},
			{User: "John Smith", Book: "Next.js in Action", Borrowed: "2025-05-11"},
		},
		Stats: []Stat{
			{Label: "Total Books", Value: 3200},
			{Label: "Total Members", Value: 450},
			{Label: "Books Issued", Value: 120},
			{Label: "Books Returned", Value: 110},
		},
		Trends: []MonthlyTrend{
			{Month: "Jan", Books: 3000, Issued: 100, Returned: 90},
			{Month: "Feb", Books: 3100, Issued: 110, Returned: 95},
			{Month: "Mar", Books: 3150, Issued: 120, Returned: 100},
			{Month: "Apr", Books: 3200, Issued: 130, Returned: 110},
		},
	}
}

// Clone returns a deep copy.
func (s Seed) Clone() Seed {
	return Seed{
		Books:   append([]Book(nil), s.Books...),
		Members: append([]Member(nil), s.Members...),
		Loans:   append([]Loan(nil), s.Loans...),
		Stats:   append([]Stat(nil), s.Stats...),
		Trends:  append([]MonthlyTrend(nil), s.Trends...),
	}
}

// MaxBookID is the largest seeded book id (0 when there are none).
func (s Seed) MaxBookID() int64 {
	var max int64
	for _, book := range s.Books {
		if book.ID > max {
			max = book.ID
		}
	}
	return max
}
