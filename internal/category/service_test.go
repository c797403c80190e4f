package category_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/budget/internal/apperr"
	"github.com/MrJamesThe3rd/budget/internal/category"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

var now = time.Date(2025, 9, 20, 10, 0, 0, 0, time.UTC)

func newService(repo category.Repository) *category.Service {
	return category.NewService(repo, category.WithClock(func() time.Time { return now }))
}

func makeCategory(name string, owner *string, createdAt time.Time) *category.Category {
	n, _ := category.NewName(name)

	return &category.Category{
		ID:        uuid.New(),
		UserID:    owner,
		Name:      n,
		Type:      transaction.TypeExpense,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestService_List(t *testing.T) {
	me := "user_1"
	other := "user_2"
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	food := makeCategory("Food", nil, base)
	housing := makeCategory("Housing", nil, base)
	gym := makeCategory("Gym", &me, base.Add(48*time.Hour))
	pets := makeCategory("Pets", &me, base.Add(24*time.Hour))
	foreign := makeCategory("Boat", &other, base.Add(72*time.Hour))

	type testCase struct {
		name      string
		setupMock func(m *category.MockRepository)
		want      []*category.Category
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "DefaultsAndOwnNewestFirst",
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().
					FindAllAccessibleByUser(gomock.Any(), me).
					Return([]*category.Category{food, housing, pets, gym}, nil)
			},
			want: []*category.Category{gym, pets, food, housing},
		},
		{
			name: "ExcludesOtherUsers",
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().
					FindAllAccessibleByUser(gomock.Any(), me).
					Return([]*category.Category{food, foreign, gym}, nil)
			},
			want: []*category.Category{gym, food},
		},
		{
			name: "Error",
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().
					FindAllAccessibleByUser(gomock.Any(), me).
					Return(nil, errors.New("db down"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := category.NewMockRepository(ctrl)
			tt.setupMock(repo)

			got, err := newService(repo).List(context.Background(), me)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		params    category.CreateParams
		setupMock func(repo *category.MockRepository, tx *category.MockTx)
		wantErr   error
	}

	tests := []testCase{
		{
			name:   "Success",
			params: category.CreateParams{Name: "Gym", Type: "expense", Color: "#ff0000"},
			setupMock: func(repo *category.MockRepository, tx *category.MockTx) {
				repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				tx.EXPECT().Add(gomock.Any(), gomock.Any()).Return(nil)
				tx.EXPECT().Commit().Return(nil)
				tx.EXPECT().Rollback().Return(nil)
			},
		},
		{
			name:    "EmptyName",
			params:  category.CreateParams{Name: " ", Type: "expense"},
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "BadType",
			params:  category.CreateParams{Name: "Gym", Type: "hobby"},
			wantErr: apperr.ErrValidation,
		},
		{
			name:   "StorageFailure",
			params: category.CreateParams{Name: "Gym", Type: "expense"},
			setupMock: func(repo *category.MockRepository, tx *category.MockTx) {
				repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				tx.EXPECT().Add(gomock.Any(), gomock.Any()).Return(apperr.Storage("creating category", errors.New("duplicate")))
				tx.EXPECT().Rollback().Return(nil)
			},
			wantErr: apperr.ErrStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := category.NewMockRepository(ctrl)
			dbTx := category.NewMockTx(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo, dbTx)
			}

			got, err := newService(repo).Create(context.Background(), "user_1", tt.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, got.UserID)
			assert.Equal(t, "user_1", *got.UserID)
			assert.Equal(t, "Gym", got.Name.String())
			assert.Equal(t, now, got.CreatedAt)
		})
	}
}

func TestService_Archive(t *testing.T) {
	me := "user_1"
	other := "user_2"
	created := now.Add(-time.Hour)

	type testCase struct {
		name      string
		existing  *category.Category
		setupMock func(tx *category.MockTx, c *category.Category)
		wantErr   error
	}

	tests := []testCase{
		{
			name:     "Success",
			existing: makeCategory("Gym", &me, created),
			setupMock: func(tx *category.MockTx, c *category.Category) {
				tx.EXPECT().FindByID(gomock.Any(), c.ID).Return(c, nil)
				tx.EXPECT().Update(gomock.Any(), c).Return(nil)
				tx.EXPECT().Commit().Return(nil)
			},
		},
		{
			name:     "DefaultCategory",
			existing: makeCategory("Food", nil, created),
			setupMock: func(tx *category.MockTx, c *category.Category) {
				tx.EXPECT().FindByID(gomock.Any(), c.ID).Return(c, nil)
			},
			wantErr: apperr.ErrForbidden,
		},
		{
			name:     "OtherUser",
			existing: makeCategory("Boat", &other, created),
			setupMock: func(tx *category.MockTx, c *category.Category) {
				tx.EXPECT().FindByID(gomock.Any(), c.ID).Return(c, nil)
			},
			wantErr: apperr.ErrForbidden,
		},
		{
			name:     "NotFound",
			existing: makeCategory("Gone", &me, created),
			setupMock: func(tx *category.MockTx, c *category.Category) {
				tx.EXPECT().FindByID(gomock.Any(), c.ID).Return(nil, apperr.NotFound("category", c.ID))
			},
			wantErr: apperr.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := category.NewMockRepository(ctrl)
			dbTx := category.NewMockTx(ctrl)

			repo.EXPECT().Begin(gomock.Any()).Return(dbTx, nil)
			dbTx.EXPECT().Rollback().Return(nil)
			tt.setupMock(dbTx, tt.existing)

			got, err := newService(repo).Archive(context.Background(), me, tt.existing.ID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.False(t, tt.existing.Archived)

				return
			}

			require.NoError(t, err)
			assert.True(t, got.Archived)
			assert.Equal(t, now, got.UpdatedAt)
		})
	}
}

func TestService_CheckAccessible(t *testing.T) {
	me := "user_1"
	other := "user_2"

	defaultCategory := makeCategory("Food", nil, now)
	own := makeCategory("Gym", &me, now)
	foreign := makeCategory("Boat", &other, now)
	missing := uuid.New()

	type testCase struct {
		name    string
		id      uuid.UUID
		found   *category.Category
		findErr error
		wantErr error
	}

	tests := []testCase{
		{name: "Default", id: defaultCategory.ID, found: defaultCategory},
		{name: "Owned", id: own.ID, found: own},
		{name: "OtherUser", id: foreign.ID, found: foreign, wantErr: apperr.ErrForbidden},
		{name: "Missing", id: missing, findErr: apperr.NotFound("category", missing), wantErr: apperr.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := category.NewMockRepository(ctrl)
			repo.EXPECT().FindByID(gomock.Any(), tt.id).Return(tt.found, tt.findErr)

			err := newService(repo).CheckAccessible(context.Background(), me, tt.id)

			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
