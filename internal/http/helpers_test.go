package http

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginationMeta(t *testing.T) {
	meta := paginationMeta(2, 5, 12, "totalBooks")

	assert.Equal(t, 2, meta["currentPage"])
	assert.Equal(t, 5, meta["pageSize"])
	assert.Equal(t, int64(3), meta["totalPages"])
	assert.Equal(t, int64(12), meta["totalBooks"])
}

func TestPaginationMetaExactFit(t *testing.T) {
	meta := paginationMeta(1, 5, 10, "totalBorrowers")
	assert.Equal(t, int64(2), meta["totalPages"])
}

func TestPaginationMetaEmpty(t *testing.T) {
	meta := paginationMeta(1, 10, 0, "totalBooks")
	assert.Equal(t, int64(0), meta["totalPages"])
}

func TestQuantityFieldAcceptsNumberAndString(t *testing.T) {
	var payload struct {
		Quantity quantityField `json:"quantity"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"quantity": 7}`), &payload))
	value, ok := payload.Quantity.Value()
	assert.True(t, ok)
	assert.Equal(t, 7, value)

	payload.Quantity = quantityField{}
	require.NoError(t, json.Unmarshal([]byte(`{"quantity": "9"}`), &payload))
	value, ok = payload.Quantity.Value()
	assert.True(t, ok)
	assert.Equal(t, 9, value)

	payload.Quantity = quantityField{}
	require.NoError(t, json.Unmarshal([]byte(`{"quantity": "many"}`), &payload))
	_, ok = payload.Quantity.Value()
	assert.False(t, ok)

	payload.Quantity = quantityField{}
	require.NoError(t, json.Unmarshal([]byte(`{"quantity": null}`), &payload))
	assert.False(t, payload.Quantity.present)
}
