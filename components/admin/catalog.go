package admin

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultPlaceholderImage is used for books submitted without an image.
const DefaultPlaceholderImage = "https://placehold.co/100x140?text=Book"

var (
	// ErrIncompleteDraft is returned (wrapped in *DraftError) when title,
	// author, or category is empty after trimming.
	ErrIncompleteDraft = errors.New("admin: please fill in all fields")
	// ErrEditTargetMissing is returned when the record being edited no longer exists.
	ErrEditTargetMissing = errors.New("admin: book being edited no longer exists")
	// ErrBookNotFound is returned when an edit is requested for an unknown id.
	ErrBookNotFound = errors.New("admin: book not found")
	// ErrUnknownPanel is returned for navigation keys outside the panel set.
	ErrUnknownPanel = errors.New("admin: unknown panel")

	errMissingIDSource = errors.New("admin: id source not configured")
)

// CatalogRules carries the collaborators a catalog transition needs.
type CatalogRules struct {
	IDs              IDSource
	Validator        DraftValidator
	PlaceholderImage string
}

func (r CatalogRules) normalize() CatalogRules {
	if r.Validator == nil {
		r.Validator = emptyFieldValidator{}
	}
	if strings.TrimSpace(r.PlaceholderImage) == "" {
		r.PlaceholderImage = DefaultPlaceholderImage
	}
	return r
}

// Catalog is the ordered book list plus the single book form.
type Catalog struct {
	Books  []Book `json:"books"`
	Editor Editor `json:"editor"`
}

// NewCatalog builds an idle catalog over a copy of books.
func NewCatalog(books []Book) Catalog {
	return Catalog{
		Books:  append([]Book(nil), books...),
		Editor: Editor{Mode: EditorIdle},
	}
}

// Clone returns a deep copy.
func (c Catalog) Clone() Catalog {
	out := c
	out.Books = append([]Book(nil), c.Books...)
	return out
}

// Find returns the record with id and its position.
func (c Catalog) Find(id int64) (Book, int, bool) {
	for i, book := range c.Books {
		if book.ID == id {
			return book, i, true
		}
	}
	return Book{}, -1, false
}

// UpdateDraft replaces the form values without validating them. An idle
// editor starts creating.
func (c *Catalog) UpdateDraft(draft Draft) {
	c.Editor.Draft = draft
	if c.Editor.Mode == EditorIdle || c.Editor.Mode == "" {
		c.Editor.Mode = EditorCreating
		c.Editor.Target = 0
	}
}

// SubmitResult reports what Submit committed.
type SubmitResult struct {
	Book    Book
	Created bool
}

// Submit validates input and either updates the record being edited in place
// or prepends a new record. On success the editor returns to idle. A failed
// validation leaves the catalog untouched.
//
// When the edit target has been deleted meanwhile, the list is left unchanged,
// the editor falls back to creating with the same draft and
// ErrEditTargetMissing is returned.
func (c *Catalog) Submit(rules CatalogRules, input Draft) (SubmitResult, error) {
	rules = rules.normalize()
	draft := trimDraft(input)
	if err := rules.Validator.ValidateDraft(draft); err != nil {
		return SubmitResult{}, err
	}

	if c.Editor.Editing() {
		target := c.Editor.Target
		_, idx, ok := c.Find(target)
		if !ok {
			c.Editor = Editor{Mode: EditorCreating, Draft: draft}
			return SubmitResult{}, fmt.Errorf("%w: id %d", ErrEditTargetMissing, target)
		}
		updated := bookFromDraft(target, draft, rules.PlaceholderImage)
		books := append([]Book(nil), c.Books...)
		books[idx] = updated
		c.Books = books
		c.Editor = Editor{Mode: EditorIdle}
		return SubmitResult{Book: updated}, nil
	}

	if rules.IDs == nil {
		return SubmitResult{}, errMissingIDSource
	}
	created := bookFromDraft(rules.IDs.NextID(), draft, rules.PlaceholderImage)
	books := make([]Book, 0, len(c.Books)+1)
	books = append(books, created)
	books = append(books, c.Books...)
	c.Books = books
	c.Editor = Editor{Mode: EditorIdle}
	return SubmitResult{Book: created, Created: true}, nil
}

// BeginEdit copies the record with id into the draft. The list is not mutated.
func (c *Catalog) BeginEdit(id int64) (Book, error) {
	book, _, ok := c.Find(id)
	if !ok {
		return Book{}, fmt.Errorf("%w: id %d", ErrBookNotFound, id)
	}
	c.Editor = Editor{
		Mode:   EditorEditing,
		Target: id,
		Draft: Draft{
			Title:    book.Title,
			Author:   book.Author,
			Category: book.Category,
			Image:    book.Image,
		},
	}
	return book, nil
}

// CancelEdit discards the draft.
func (c *Catalog) CancelEdit() {
	c.Editor = Editor{Mode: EditorIdle}
}

// Delete removes the record with id when confirmed is true. Deleting the
// record being edited also resets the editor. It reports whether a record was
// removed; unconfirmed requests and unknown ids are no-ops.
func (c *Catalog) Delete(id int64, confirmed bool) bool {
	if !confirmed {
		return false
	}
	_, idx, ok := c.Find(id)
	if !ok {
		return false
	}
	books := make([]Book, 0, len(c.Books)-1)
	books = append(books, c.Books[:idx]...)
	books = append(books, c.Books[idx+1:]...)
	c.Books = books
	if c.Editor.Editing() && c.Editor.Target == id {
		c.Editor = Editor{Mode: EditorIdle}
	}
	return true
}

func trimDraft(d Draft) Draft {
	return Draft{
		Title:    strings.TrimSpace(d.Title),
		Author:   strings.TrimSpace(d.Author),
		Category: strings.TrimSpace(d.Category),
		Image:    strings.TrimSpace(d.Image),
	}
}

func bookFromDraft(id int64, d Draft, placeholder string) Book {
	image := d.Image
	if image == "" {
		image = placeholder
	}
	return Book{
		ID:       id,
		Title:    d.Title,
		Author:   d.Author,
		Category: d.Category,
		Image:    image,
	}
}
