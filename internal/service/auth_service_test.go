package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/watersafe-backend/internal/models"
	"github.com/ignatzorin/watersafe-backend/internal/pkg/apperror"
	"github.com/ignatzorin/watersafe-backend/internal/repository"
	"github.com/ignatzorin/watersafe-backend/internal/validation"
)

// mockUserRepository реализует UserRepository для тестов.
type mockUserRepository struct {
	usersByEmail map[string]*models.User
	usersByID    map[uuid.UUID]*models.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		usersByEmail: make(map[string]*models.User),
		usersByID:    make(map[uuid.UUID]*models.User),
	}
}

func (m *mockUserRepository) Upsert(ctx context.Context, user *models.User) error {
	if existing, ok := m.usersByEmail[user.Email]; ok {
		if user.Name != nil {
			existing.Name = user.Name
		}
		existing.UpdatedAt = time.Now()
		*user = *existing
		return nil
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := *user
	m.usersByEmail[user.Email] = &stored
	m.usersByID[user.ID] = &stored
	return nil
}

func (m *mockUserRepository) SaveOperator(ctx context.Context, user *models.User) error {
	if existing, ok := m.usersByEmail[user.Email]; ok {
		existing.Role = models.UserRoleOperator
		existing.PasswordHash = user.PasswordHash
		*user = *existing
		return nil
	}
	user.Role = models.UserRoleOperator
	return m.Upsert(ctx, user)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := m.usersByEmail[email]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := m.usersByID[id]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) List(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0, len(m.usersByID))
	for _, u := range m.usersByID {
		users = append(users, *u)
	}
	return users, nil
}

func TestAuthService_CreateOperatorAndLogin(t *testing.T) {
	repo := newMockUserRepository()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))
	tokens := NewTokenManager("test-secret", time.Hour, clock)
	service := NewAuthService(repo, tokens)
	ctx := context.Background()

	op, err := service.CreateOperator(ctx, "Ops@WaterSafe.org", nil, "CorrectHorse42")
	require.NoError(t, err)
	assert.Equal(t, "ops@watersafe.org", op.Email)
	assert.True(t, op.IsOperator())

	token, err := service.Login(ctx, LoginInput{Email: "ops@watersafe.org", Password: "CorrectHorse42"})
	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)
	assert.Equal(t, int64(3600), token.ExpiresIn)

	userID, role, err := tokens.ParseAccess(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, op.ID, userID)
	assert.Equal(t, models.UserRoleOperator, role)
}

func TestAuthService_LoginRejects(t *testing.T) {
	repo := newMockUserRepository()
	service := NewAuthService(repo, NewTokenManager("test-secret", time.Hour, nil))
	ctx := context.Background()

	_, err := service.CreateOperator(ctx, "ops@watersafe.org", nil, "CorrectHorse42")
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(ctx, &models.User{ID: uuid.New(), Email: "citizen@example.com", Role: models.UserRoleCitizen}))

	cases := []LoginInput{
		{Email: "ops@watersafe.org", Password: "wrong-password"},
		{Email: "nobody@watersafe.org", Password: "CorrectHorse42"},
		{Email: "citizen@example.com", Password: "anything"},
		{Email: "", Password: ""},
	}
	for _, in := range cases {
		_, err := service.Login(ctx, in)
		assert.ErrorIs(t, err, apperror.ErrInvalidCredentials, in.Email)
	}
}

func TestAuthService_CreateOperatorWeakPassword(t *testing.T) {
	service := NewAuthService(newMockUserRepository(), NewTokenManager("test-secret", time.Hour, nil))

	_, err := service.CreateOperator(context.Background(), "ops@watersafe.org", nil, "short")
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestTokenManager_Expired(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))
	tokens := NewTokenManager("test-secret", time.Minute, clock)

	token, err := tokens.Generate(&models.User{ID: uuid.New(), Role: models.UserRoleOperator})
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, _, err = tokens.ParseAccess(token.AccessToken)
	assert.Error(t, err)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a", time.Hour, nil).Generate(&models.User{ID: uuid.New(), Role: models.UserRoleOperator})
	require.NoError(t, err)

	_, _, err = NewTokenManager("secret-b", time.Hour, nil).ParseAccess(token.AccessToken)
	assert.Error(t, err)
}

func TestUserService_Upsert(t *testing.T) {
	repo := newMockUserRepository()
	service := NewUserService(repo)
	ctx := context.Background()

	name := "John Doe"
	first, err := service.Upsert(ctx, validation.UpsertUserRequest{Email: "john@example.com", Name: &name})
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleCitizen, first.Role)

	second, err := service.Upsert(ctx, validation.UpsertUserRequest{Email: "JOHN@example.com"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "John Doe", *second.Name)

	_, err = service.Upsert(ctx, validation.UpsertUserRequest{Email: "broken"})
	assert.True(t, apperror.IsValidation(err))

	users, err := service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	_, err = service.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrUserNotFound)
}
