package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/budget/internal/apperr"
)

func TestWriteError(t *testing.T) {
	type testCase struct {
		name    string
		err     error
		wantErr error
	}

	tests := []testCase{
		{
			name:    "DuplicateName",
			err:     &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "uq_categories_owner_type_name"},
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "WrappedDuplicateName",
			err:     fmt.Errorf("exec: %w", &pgconn.PgError{Code: pgerrcode.UniqueViolation}),
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "OtherConstraint",
			err:     &pgconn.PgError{Code: pgerrcode.CheckViolation},
			wantErr: apperr.ErrStorage,
		},
		{
			name:    "ConnectionLost",
			err:     errors.New("connection reset by peer"),
			wantErr: apperr.ErrStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := writeError("creating category", tt.err)
			assert.ErrorIs(t, err, tt.wantErr)

			if tt.wantErr == apperr.ErrValidation {
				assert.EqualError(t, err, "name: already exists")
			}
		})
	}
}
