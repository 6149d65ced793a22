package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/digital-store/internal/apperr"
	"github.com/tuanvumaihuynh/digital-store/internal/model"
	"github.com/tuanvumaihuynh/digital-store/internal/repository"
	"github.com/tuanvumaihuynh/digital-store/internal/service"
	"github.com/tuanvumaihuynh/digital-store/internal/storage/db"
	"github.com/tuanvumaihuynh/digital-store/pkg/ptr"
	"github.com/tuanvumaihuynh/digital-store/pkg/validator"
)

type fakeUserRepo struct {
	st *fakeStore
}

func (r fakeUserRepo) WithDB(db.DB) repository.UserRepository { return r }

func (r fakeUserRepo) CreateUser(_ context.Context, params repository.CreateUserParams) (model.User, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	r.st.nextID++
	now := time.Now()
	u := model.User{
		ID:           r.st.nextID,
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		Role:         params.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.st.users[u.ID] = u
	return u, nil
}

func (r fakeUserRepo) GetUser(_ context.Context, id int64) (model.User, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	u, ok := r.st.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (r fakeUserRepo) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, u := range r.st.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (r fakeUserRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, u := range r.st.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetUserByEmail(ctx, email)
	return err == nil, nil
}

func (r fakeUserRepo) UpdateUserProfile(_ context.Context, id int64, params repository.UpdateUserProfileParams) (model.User, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	u, ok := r.st.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	u.FirstName = params.FirstName
	u.LastName = params.LastName
	r.st.users[id] = u
	return u, nil
}

func TestUserService(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)

	newService := func() service.UserService {
		return service.NewUserService(logger, v, fakeUserRepo{st: newFakeStore()})
	}

	register := service.RegisterParams{
		Username:        "gopher",
		Email:           "gopher@example.com",
		Password:        "s3cretpass",
		ConfirmPassword: "s3cretpass",
		FirstName:       ptr.New("Go"),
	}

	t.Run("Should register a customer with a hashed password", func(t *testing.T) {
		svc := newService()

		u, err := svc.Register(ctx, register)
		require.NoError(t, err)
		assert.Equal(t, "gopher", u.Username)
		assert.Equal(t, model.RoleCustomer, u.Role)
		assert.NotEqual(t, register.Password, u.PasswordHash)
		require.NotNil(t, u.FirstName)
		assert.Equal(t, "Go", *u.FirstName)
		assert.Nil(t, u.LastName)
	})

	t.Run("Should reject taken username and email", func(t *testing.T) {
		svc := newService()
		_, err := svc.Register(ctx, register)
		require.NoError(t, err)

		_, err = svc.Register(ctx, register)
		assert.ErrorIs(t, err, apperr.UsernameTaken)

		other := register
		other.Username = "gopher2"
		_, err = svc.Register(ctx, other)
		assert.ErrorIs(t, err, apperr.EmailTaken)
	})

	t.Run("Should list every invalid registration field", func(t *testing.T) {
		svc := newService()

		_, err := svc.Register(ctx, service.RegisterParams{
			Username:        "go",
			Email:           "not-an-email",
			Password:        "short",
			ConfirmPassword: "different",
		})
		zErr := requireZError(t, err, apperr.ValidationErrorCode)
		assert.ElementsMatch(t, []string{
			"username must be at least 3 characters long.",
			"email must be a valid email address.",
			"password must be at least 8 characters long.",
			"confirm_password must match Password.",
		}, zErr.Details())
	})

	t.Run("Should log in with the right password only", func(t *testing.T) {
		svc := newService()
		registered, err := svc.Register(ctx, register)
		require.NoError(t, err)

		u, err := svc.Login(ctx, service.LoginParams{Email: register.Email, Password: register.Password})
		require.NoError(t, err)
		assert.Equal(t, registered.ID, u.ID)

		_, err = svc.Login(ctx, service.LoginParams{Email: register.Email, Password: "wrong-password"})
		assert.ErrorIs(t, err, apperr.InvalidCredentials)

		_, err = svc.Login(ctx, service.LoginParams{Email: "nobody@example.com", Password: register.Password})
		assert.ErrorIs(t, err, apperr.InvalidCredentials)
	})

	t.Run("Should update and clear profile names", func(t *testing.T) {
		svc := newService()
		registered, err := svc.Register(ctx, register)
		require.NoError(t, err)

		u, err := svc.UpdateProfile(ctx, service.UpdateProfileParams{
			UserID:    registered.ID,
			FirstName: ptr.New(""),
			LastName:  ptr.New("Pher"),
		})
		require.NoError(t, err)
		assert.Nil(t, u.FirstName)
		require.NotNil(t, u.LastName)
		assert.Equal(t, "Pher", *u.LastName)

		_, err = svc.UpdateProfile(ctx, service.UpdateProfileParams{UserID: 9999})
		assert.ErrorIs(t, err, apperr.UserNotFound)
	})

	t.Run("Should create an admin only once", func(t *testing.T) {
		svc := newService()

		u, created, err := svc.EnsureAdmin(ctx, register)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, model.RoleAdmin, u.Role)

		_, created, err = svc.EnsureAdmin(ctx, register)
		require.NoError(t, err)
		assert.False(t, created)

		logged, err := svc.Login(ctx, service.LoginParams{Email: register.Email, Password: register.Password})
		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, logged.Role)
	})
}
