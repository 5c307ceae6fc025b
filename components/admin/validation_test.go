package admin

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSchemaValidatorAcceptsCompleteDraft(t *testing.T) {
	v := NewJSONSchemaValidator()
	assert.NoError(t, v.ValidateDraft(Draft{Title: "T", Author: "A", Category: "C"}))
	assert.NoError(t, v.ValidateDraft(Draft{Title: "T", Author: "A", Category: "C", Image: "x"}))
}

func TestJSONSchemaValidatorReportsEmptyFields(t *testing.T) {
	v := NewJSONSchemaValidator()
	err := v.ValidateDraft(Draft{Category: "C"})
	require.ErrorIs(t, err, ErrIncompleteDraft)

	var draftErr *DraftError
	require.True(t, errors.As(err, &draftErr))
	assert.Equal(t, []string{"title", "author"}, draftErr.Fields)
	assert.Contains(t, err.Error(), "title, author")
}

func TestJSONSchemaValidatorIgnoresImage(t *testing.T) {
	v := NewJSONSchemaValidator()
	err := v.ValidateDraft(Draft{})
	var draftErr *DraftError
	require.True(t, errors.As(err, &draftErr))
	assert.Equal(t, []string{"title", "author", "category"}, draftErr.Fields)
}

func TestEmptyFieldValidatorMatchesSchemaValidator(t *testing.T) {
	drafts := []Draft{
		{},
		{Title: "T"},
		{Title: "T", Author: "A"},
		{Title: "T", Author: "A", Category: "C"},
	}
	schema := NewJSONSchemaValidator()
	for _, draft := range drafts {
		a := schema.ValidateDraft(draft)
		b := emptyFieldValidator{}.ValidateDraft(draft)
		assert.Equal(t, a == nil, b == nil, "draft %+v", draft)
		if a != nil {
			assert.Equal(t, a.Error(), b.Error())
		}
	}
}

func TestDraftErrorWithoutFields(t *testing.T) {
	err := &DraftError{}
	assert.Equal(t, ErrIncompleteDraft.Error(), err.Error())
}
