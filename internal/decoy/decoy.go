// Package decoy serves the harmless content shown by default and after a
// duress wipe. It is stateless and knows nothing about codes or credentials.
package decoy

// Item is one entry on the decoy page.
type Item struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Page is the full decoy screen.
type Page struct {
	Title string `json:"title"`
	Items []Item `json:"items"`
}

// Renderer produces the decoy page.
type Renderer interface {
	Render() Page
}

// Static always renders the same page.
type Static struct {
	page Page
}

// NewStatic renders page, or the built-in notes page when page has no items.
func NewStatic(page Page) *Static {
	if len(page.Items) == 0 {
		page = defaultPage
	}
	return &Static{page: page}
}

// Render returns a copy so callers cannot mutate the shared page.
func (s *Static) Render() Page {
	items := make([]Item, len(s.page.Items))
	copy(items, s.page.Items)
	return Page{Title: s.page.Title, Items: items}
}

var defaultPage = Page{
	Title: "Notes",
	Items: []Item{
		{Title: "Groceries", Body: "eggs, rice, tomatoes, olive oil, coffee"},
		{Title: "Bus times", Body: "Line 4 leaves the station at :15 and :45"},
		{Title: "Tip split", Body: "dinner 84.50 / 3 = 28.17 each"},
		{Title: "Museum", Body: "Closed Mondays. Free entry first Sunday of the month."},
	},
}
