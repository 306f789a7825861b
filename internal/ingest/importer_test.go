package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abuzz-labs/intel-cli/internal/model"
	"github.com/abuzz-labs/intel-cli/internal/store"
)

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestImportFiles(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.InsertCompetitor(ctx, model.Competitor{
		ID: "c1", Name: "Pointr", Status: model.CompetitorActive,
	}))

	path := createFeedXLSX(t, [][]string{
		{"Pointr", "2025-06-03", "Series C closed", "Raised $50M", "Investment/Funding Round", "EUROPE", "4", "", "https://example.com/a"},
		{"wayfinder labs", "2025-06-04", "Mall rollout", "", "New Project/Installation", "MENA", "3", "", ""},
	})

	res, err := NewImporter(st).ImportFiles(ctx, []string{path})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Files)
	assert.Equal(t, int64(2), res.Items)
	assert.Equal(t, 1, res.NewCompetitors)

	// The unknown feed name lands as a title-cased active competitor.
	c, err := st.GetCompetitorByName(ctx, "Wayfinder Labs")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, model.CompetitorActive, c.Status)

	items, err := st.FindItems(ctx, store.ItemFilter{CompetitorIDs: []string{c.ID}})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Mall rollout", items[0].Title)
}

func TestImportFilesExistingNameCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.InsertCompetitor(ctx, model.Competitor{
		ID: "c1", Name: "Pointr", Status: model.CompetitorActive,
	}))

	path := createFeedXLSX(t, [][]string{
		{"POINTR", "2025-06-03", "Award win", "", "Award/Recognition", "", "2", "", ""},
	})

	res, err := NewImporter(st).ImportFiles(ctx, []string{path})
	require.NoError(t, err)
	assert.Zero(t, res.NewCompetitors)

	items, err := st.FindItems(ctx, store.ItemFilter{CompetitorIDs: []string{"c1"}})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestImportFilesParseErrorWritesNothing(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	good := createFeedXLSX(t, [][]string{
		{"Pointr", "2025-06-03", "Fine", "", "Product Launch", "", "2", "", ""},
	})
	bad := createFeedXLSX(t, [][]string{
		{"Pointr", "not a date", "Broken", "", "Product Launch", "", "2", "", ""},
	})

	_, err := NewImporter(st).ImportFiles(ctx, []string{good, bad})
	require.Error(t, err)

	items, err := st.FindItems(ctx, store.ItemFilter{})
	require.NoError(t, err)
	assert.Empty(t, items, "a bad file aborts the run before any write")
}

func TestImportFilesNoPaths(t *testing.T) {
	st := newTestStore(t)
	_, err := NewImporter(st).ImportFiles(context.Background(), nil)
	assert.Error(t, err)
}
