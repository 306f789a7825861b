package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkUpsertEmptyRows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	n, err := BulkUpsert(context.Background(), mock, UpsertConfig{
		Table:        "intel_items",
		Columns:      []string{"id"},
		ConflictKeys: []string{"id"},
	}, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBulkUpsertValidation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := [][]any{{"a"}}

	_, err = BulkUpsert(context.Background(), mock, UpsertConfig{
		Table:        "intel_items",
		ConflictKeys: []string{"id"},
	}, rows)
	assert.Error(t, err, "missing columns")

	_, err = BulkUpsert(context.Background(), mock, UpsertConfig{
		Table:   "intel_items",
		Columns: []string{"id"},
	}, rows)
	assert.Error(t, err, "missing conflict keys")
}

func TestBulkUpsertHappyPath(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE _tmp_upsert_intel_items`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_intel_items"}, []string{"id", "title"}).
		WillReturnResult(2)
	mock.ExpectExec(`INSERT INTO intel_items .* ON CONFLICT \(id\) DO UPDATE SET`).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	n, err := BulkUpsert(context.Background(), mock, UpsertConfig{
		Table:        "intel_items",
		Columns:      []string{"id", "title"},
		ConflictKeys: []string{"id"},
	}, [][]any{{"a", "one"}, {"b", "two"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
