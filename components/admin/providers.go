package admin

import (
	"context"
	"fmt"

	"github.com/ettle/strcase"
)

// ConfirmDeleteText is shown before a book is deleted.
const ConfirmDeleteText = "Are you sure you want to delete this book?"

// NotReturnedLabel is shown for open loans.
const NotReturnedLabel = "Not Returned"

func defaultProviders(chartOpts ...EChartsProviderOption) map[Panel]Provider {
	return map[Panel]Provider{
		PanelDashboard: NewOverviewProvider(
			NewEChartsProvider(ChartBar, chartOpts...),
			NewEChartsProvider(ChartLine, chartOpts...),
		),
		PanelUsers:        ProviderFunc(membersProvider),
		PanelBooks:        ProviderFunc(booksProvider),
		PanelTransactions: ProviderFunc(loansProvider),
	}
}

// OverviewProvider builds the stat tiles and the two overview charts.
type OverviewProvider struct {
	bar  *EChartsProvider
	line *EChartsProvider
}

// NewOverviewProvider wires the bar ("Library Overview") and line ("Issuance
// Trends") chart renderers.
func NewOverviewProvider(bar, line *EChartsProvider) *OverviewProvider {
	if bar == nil {
		bar = NewEChartsProvider(ChartBar)
	}
	if line == nil {
		line = NewEChartsProvider(ChartLine)
	}
	return &OverviewProvider{bar: bar, line: line}
}

// Fetch renders the dashboard panel.
func (p *OverviewProvider) Fetch(ctx context.Context, meta PanelContext) (PanelData, error) {
	locale := meta.Viewer.Locale
	stats := make([]map[string]any, 0, len(meta.Seed.Stats))
	for _, stat := range meta.Seed.Stats {
		stats = append(stats, map[string]any{
			"label":   translateOrFallback(ctx, meta.Translator, "library.stat."+strcase.ToSnake(stat.Label), locale, stat.Label, nil),
			"value":   stat.Value,
			"display": FormatCount(locale, stat.Value),
		})
	}

	months := make([]string, len(meta.Seed.Trends))
	books := make([]float64, len(meta.Seed.Trends))
	issued := make([]float64, len(meta.Seed.Trends))
	returned := make([]float64, len(meta.Seed.Trends))
	for i, trend := range meta.Seed.Trends {
		months[i] = translateOrFallback(ctx, meta.Translator, "library.month."+trend.Month, locale, trend.Month, nil)
		books[i] = float64(trend.Books)
		issued[i] = float64(trend.Issued)
		returned[i] = float64(trend.Returned)
	}

	data := PanelData{"stats": stats}
	if len(months) == 0 {
		return data, nil
	}

	overview, err := p.bar.Render(meta.Viewer, ChartSpec{
		Key:    "library.overview",
		Title:  translateOrFallback(ctx, meta.Translator, "library.chart.overview", locale, "Library Overview", nil),
		XAxis:  months,
		Series: []ChartSeries{{Name: "books", Values: books}},
	})
	if err != nil {
		return nil, fmt.Errorf("admin: render overview chart: %w", err)
	}
	trends, err := p.line.Render(meta.Viewer, ChartSpec{
		Key:   "library.trends",
		Title: translateOrFallback(ctx, meta.Translator, "library.chart.trends", locale, "Issuance Trends", nil),
		XAxis: months,
		Series: []ChartSeries{
			{Name: "issued", Values: issued},
			{Name: "returned", Values: returned},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("admin: render trends chart: %w", err)
	}
	data["overview_chart"] = overview
	data["trends_chart"] = trends
	return data, nil
}

func membersProvider(ctx context.Context, meta PanelContext) (PanelData, error) {
	rows := make([]map[string]any, 0, len(meta.Seed.Members))
	for _, m := range meta.Seed.Members {
		rows = append(rows, map[string]any{
			"name":  m.Name,
			"email": m.Email,
			"role":  m.Role,
		})
	}
	return PanelData{
		"heading": translateOrFallback(ctx, meta.Translator, "library.users.heading", meta.Viewer.Locale, "Users Section", nil),
		"columns": []string{"Name", "Email", "Role"},
		"members": rows,
	}, nil
}

func loansProvider(ctx context.Context, meta PanelContext) (PanelData, error) {
	notReturned := translateOrFallback(ctx, meta.Translator, "library.loans.not_returned", meta.Viewer.Locale, NotReturnedLabel, nil)
	rows := make([]map[string]any, 0, len(meta.Seed.Loans))
	for _, loan := range meta.Seed.Loans {
		returned := loan.Returned
		if loan.Open() {
			returned = notReturned
		}
		rows = append(rows, map[string]any{
			"user":     loan.User,
			"book":     loan.Book,
			"borrowed": loan.Borrowed,
			"returned": returned,
			"open":     loan.Open(),
		})
	}
	return PanelData{
		"heading": translateOrFallback(ctx, meta.Translator, "library.loans.heading", meta.Viewer.Locale, "Borrow / Return Section", nil),
		"columns": []string{"User", "Book", "Date Borrowed", "Date Returned"},
		"loans":   rows,
	}, nil
}

func booksProvider(ctx context.Context, meta PanelContext) (PanelData, error) {
	locale := meta.Viewer.Locale
	catalog := meta.Workspace.Catalog
	books := make([]map[string]any, 0, len(catalog.Books))
	for _, book := range catalog.Books {
		books = append(books, map[string]any{
			"id":            book.ID,
			"title":         book.Title,
			"author":        book.Author,
			"category":      book.Category,
			"category_slug": strcase.ToKebab(book.Category),
			"image":         book.Image,
			"editing":       catalog.Editor.Editing() && catalog.Editor.Target == book.ID,
		})
	}

	editing := catalog.Editor.Editing()
	heading := translateOrFallback(ctx, meta.Translator, "library.books.form.create", locale, "Add New Book", nil)
	submit := translateOrFallback(ctx, meta.Translator, "library.books.form.add", locale, "Add Book", nil)
	if editing {
		heading = translateOrFallback(ctx, meta.Translator, "library.books.form.edit", locale, "Edit Book", nil)
		submit = translateOrFallback(ctx, meta.Translator, "library.books.form.update", locale, "Update Book", nil)
	}
	draft := catalog.Editor.Draft
	return PanelData{
		"books": books,
		"form": map[string]any{
			"heading": heading,
			"submit":  submit,
			"mode":    string(catalog.Editor.Mode),
			"editing": editing,
			"target":  catalog.Editor.Target,
			"draft": map[string]any{
				"title":    draft.Title,
				"author":   draft.Author,
				"category": draft.Category,
				"image":    draft.Image,
			},
		},
		"confirm_delete": translateOrFallback(ctx, meta.Translator, "library.books.confirm_delete", locale, ConfirmDeleteText, nil),
	}, nil
}
