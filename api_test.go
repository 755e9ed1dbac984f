package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.DiscardHandler)
}

func TestClientAttachesBearerToken(t *testing.T) {
	fake := newFakeFastidious(t)
	srv := fake.server()
	client := NewClient(srv.URL, "fst_secret", testLogger(t))

	_, err := client.ListItems(t.Context(), ListItemsQuery{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer fst_secret", fake.authHeader())
}

func TestClientContentType(t *testing.T) {
	fake := newFakeFastidious(t)
	srv := fake.server()
	client := NewClient(srv.URL, "fst_secret", testLogger(t))

	// Requests with a body declare JSON.
	_, err := client.CreateItem(t.Context(), CreateItemRequest{Type: ItemTypeText, Title: "a", Content: "b"})
	require.NoError(t, err)
	assert.Equal(t, "application/json", fake.contentTypeHeader())

	// Bodyless requests do not.
	_, err = client.ListItems(t.Context(), ListItemsQuery{})
	require.NoError(t, err)
	assert.Empty(t, fake.contentTypeHeader())
}

func TestClientNormalisesFailure(t *testing.T) {
	fake := newFakeFastidious(t)
	fake.setFailWith(503)
	srv := fake.server()
	client := NewClient(srv.URL, "fst_secret", testLogger(t))

	_, err := client.GetItem(t.Context(), "nope")
	require.Error(t, err)

	var aErr *apiError
	require.ErrorAs(t, err, &aErr)
	assert.Equal(t, 503, aErr.Code)
	assert.Contains(t, err.Error(), "fastidious api")
	assert.Contains(t, err.Error(), "503")

	// Exactly one request: no retry on failure.
	assert.Equal(t, 1, fake.callCount())
}

func TestClientGetItemNotFound(t *testing.T) {
	fake := newFakeFastidious(t)
	srv := fake.server()
	client := NewClient(srv.URL, "fst_secret", testLogger(t))

	_, err := client.GetItem(t.Context(), "missing")
	var aErr *apiError
	require.ErrorAs(t, err, &aErr)
	assert.Equal(t, 404, aErr.Code)
}

func TestClientMoveItemBody(t *testing.T) {
	fake := newFakeFastidious(t)
	srv := fake.server()
	client := NewClient(srv.URL, "fst_secret", testLogger(t))
	n := fake.seed(Note{Type: ItemTypeText, Title: "trapped"})

	tests := []struct {
		name     string
		target   *string
		wantJSON string
	}{
		{"nil target serialises as explicit null", nil, "null"},
		{"string target serialises as string", ptr("col-1"), `"col-1"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.MoveItem(t.Context(), n.ID, tt.target)
			require.NoError(t, err)

			var body map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(fake.moveBody(), &body))
			raw, ok := body["targetParentId"]
			require.True(t, ok, "targetParentId key must always be present")
			assert.Equal(t, tt.wantJSON, string(raw))
		})
	}
}

func TestClientListItemsQuery(t *testing.T) {
	fake := newFakeFastidious(t)
	srv := fake.server()
	client := NewClient(srv.URL, "fst_secret", testLogger(t))

	col := fake.seed(Note{Type: ItemTypeCollection, Title: "box"})
	fake.seed(Note{Type: ItemTypeText, Title: "inside", ParentID: &col.ID})
	fake.seed(Note{Type: ItemTypeText, Title: "outside"})

	items, err := client.ListItems(t.Context(), ListItemsQuery{ParentID: col.ID})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "inside", items[0].Title)

	items, err = client.ListItems(t.Context(), ListItemsQuery{Query: "outside"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "outside", items[0].Title)
}

func TestClientDeleteItem(t *testing.T) {
	fake := newFakeFastidious(t)
	srv := fake.server()
	client := NewClient(srv.URL, "fst_secret", testLogger(t))
	n := fake.seed(Note{Type: ItemTypeText, Title: "gone soon"})

	require.NoError(t, client.DeleteItem(t.Context(), n.ID))

	var aErr *apiError
	err := client.DeleteItem(t.Context(), n.ID)
	require.ErrorAs(t, err, &aErr)
	assert.Equal(t, 404, aErr.Code)
}

func TestAPIErrorMessage(t *testing.T) {
	err := &apiError{Code: 404, Status: "404 Not Found"}
	assert.Equal(t, "fastidious api: 404 Not Found", err.Error())
	assert.False(t, errors.Is(err, errMethodNotFound))
}

func ptr[T any](v T) *T { return &v }
