package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorySerializeWithItems(t *testing.T) {
	c := Category{ID: 2, Name: "Hockey", Items: []CategoryItem{
		{ID: 5, Name: "Stick", Description: "Carbon", CategoryID: 2, UserID: 9},
	}}

	b, err := json.Marshal(c.SerializeWithItems())
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":2,"name":"Hockey","items":[{"id":5,"name":"Stick","description":"Carbon","category_id":2,"user_id":9}]}`, string(b))
}

func TestSerializeEmptyItemsIsList(t *testing.T) {
	b, err := json.Marshal(Category{ID: 1, Name: "Soccer"}.SerializeWithItems())
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"Soccer","items":[]}`, string(b))
}

func TestOwnedBy(t *testing.T) {
	item := CategoryItem{UserID: 3}
	assert.True(t, item.OwnedBy(3))
	assert.False(t, item.OwnedBy(4))
	assert.False(t, CategoryItem{}.OwnedBy(0), "unknown user never owns")
}
