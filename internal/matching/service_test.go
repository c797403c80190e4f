package matching_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/budget/internal/apperr"
	"github.com/MrJamesThe3rd/budget/internal/category"
	"github.com/MrJamesThe3rd/budget/internal/matching"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

const userID = "user_1"

func TestService_Suggest(t *testing.T) {
	categoryID := uuid.New()

	type testCase struct {
		name      string
		raw       string
		setupMock func(m *matching.MockRepository)
		want      *uuid.UUID
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Match",
			raw:  "COMPRA CONTINENTE PORTO",
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().FindMatch(gomock.Any(), userID, "COMPRA CONTINENTE PORTO").
					Return(&matching.Rule{CategoryID: categoryID}, nil)
			},
			want: &categoryID,
		},
		{
			name: "NoMatch",
			raw:  "UNKNOWN",
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().FindMatch(gomock.Any(), userID, "UNKNOWN").Return(nil, nil)
			},
		},
		{
			name: "BlankSkipsLookup",
			raw:  "  ",
		},
		{
			name: "Error",
			raw:  "X",
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().FindMatch(gomock.Any(), userID, "X").Return(nil, errors.New("db"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := matching.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := matching.NewService(repo, matching.NewMockCategoryFinder(ctrl))
			got, err := svc.Suggest(context.Background(), userID, tt.raw)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_Categorize(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := matching.NewMockRepository(ctrl)
	svc := matching.NewService(repo, matching.NewMockCategoryFinder(ctrl))

	food := uuid.New()
	preset := uuid.New().String()

	params := []transaction.CreateParams{
		{Description: "CONTINENTE"},
		{Description: "MYSTERY"},
		{Description: "CONTINENTE", CategoryID: preset},
	}

	repo.EXPECT().FindMatch(gomock.Any(), userID, "CONTINENTE").Return(&matching.Rule{CategoryID: food}, nil)
	repo.EXPECT().FindMatch(gomock.Any(), userID, "MYSTERY").Return(nil, nil)

	require.NoError(t, svc.Categorize(context.Background(), userID, params))

	assert.Equal(t, food.String(), params[0].CategoryID)
	assert.Empty(t, params[1].CategoryID)
	assert.Equal(t, preset, params[2].CategoryID)
}

func TestService_Learn(t *testing.T) {
	me := userID
	other := "user_2"

	type testCase struct {
		name      string
		pattern   string
		owner     *string
		setupMock func(repo *matching.MockRepository, cats *matching.MockCategoryFinder, c *category.Category)
		wantErr   error
	}

	tests := []testCase{
		{
			name:    "OwnCategory",
			pattern: "  CONTINENTE ",
			owner:   &me,
			setupMock: func(repo *matching.MockRepository, cats *matching.MockCategoryFinder, c *category.Category) {
				cats.EXPECT().FindByID(gomock.Any(), c.ID).Return(c, nil)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, r *matching.Rule) error {
						assert.Equal(t, "CONTINENTE", r.Pattern)
						assert.Equal(t, c.ID, r.CategoryID)
						return nil
					})
			},
		},
		{
			name:    "DefaultCategory",
			pattern: "EDP",
			setupMock: func(repo *matching.MockRepository, cats *matching.MockCategoryFinder, c *category.Category) {
				cats.EXPECT().FindByID(gomock.Any(), c.ID).Return(c, nil)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:    "EmptyPattern",
			pattern: "   ",
			setupMock: func(*matching.MockRepository, *matching.MockCategoryFinder, *category.Category) {},
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "ForeignCategory",
			pattern: "BOAT",
			owner:   &other,
			setupMock: func(repo *matching.MockRepository, cats *matching.MockCategoryFinder, c *category.Category) {
				cats.EXPECT().FindByID(gomock.Any(), c.ID).Return(c, nil)
			},
			wantErr: apperr.ErrForbidden,
		},
		{
			name:    "UnknownCategory",
			pattern: "X",
			setupMock: func(repo *matching.MockRepository, cats *matching.MockCategoryFinder, c *category.Category) {
				cats.EXPECT().FindByID(gomock.Any(), c.ID).Return(nil, apperr.NotFound("category", c.ID))
			},
			wantErr: apperr.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := matching.NewMockRepository(ctrl)
			cats := matching.NewMockCategoryFinder(ctrl)
			c := &category.Category{ID: uuid.New(), UserID: tt.owner}
			tt.setupMock(repo, cats, c)

			rule, err := matching.NewService(repo, cats).Learn(context.Background(), userID, tt.pattern, c.ID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, rule)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, userID, rule.UserID)
			assert.NotEqual(t, uuid.Nil, rule.ID)
		})
	}
}
