package migration

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"

	"datapost/internal/logging"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const checkQuery = "SELECT to_regclass($1) IS NOT NULL"

func TestEnsureMigrated(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		setupMocks func(mock sqlmock.Sqlmock)
		wantErr    string
		wantLog    string
	}{
		{
			name: "schema present",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(checkQuery)).WithArgs(sentinel).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
			},
			wantLog: "db_migration_skip",
		},
		{
			name: "runs every step",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(checkQuery)).WithArgs(sentinel).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
				for _, s := range steps {
					mock.ExpectExec(regexp.QuoteMeta(s.SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
				}
			},
			wantLog: "db_migration_success",
		},
		{
			name: "check fails",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(checkQuery)).WithArgs(sentinel).
					WillReturnError(errors.New("permission denied"))
			},
			wantErr: "check sentinel table: permission denied",
			wantLog: `"level":"error"`,
		},
		{
			name: "step fails",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(checkQuery)).WithArgs(sentinel).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
				mock.ExpectExec(regexp.QuoteMeta(steps[0].SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(regexp.QuoteMeta(steps[1].SQL)).WillReturnError(errors.New("disk full"))
			},
			wantErr: "migration step create_table_records failed: disk full",
			wantLog: `"migration_step":"create_table_records"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.setupMocks(mock)

			var buf bytes.Buffer
			err = EnsureMigrated(ctx, db, logging.New(&buf, nil), "db.local")

			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Contains(t, buf.String(), tt.wantLog)
			assert.Contains(t, buf.String(), `"db_host":"db.local"`)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
