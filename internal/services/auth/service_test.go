package auth

import (
	"strings"
	"testing"
	"time"

	"campuspay/internal/errors"
	"campuspay/internal/models"
	"campuspay/internal/repositories"
	"campuspay/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	users  map[string]*models.User
	tokens map[string]*models.RefreshToken
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:  make(map[string]*models.User),
		tokens: make(map[string]*models.RefreshToken),
		nextID: 1,
	}
}

func (r *fakeUserRepo) Create(user *models.User) error {
	user.ID = r.nextID
	r.nextID++
	r.users[user.Handle] = user
	return nil
}

func (r *fakeUserRepo) CreateBatch(users []*models.User) error {
	for _, u := range users {
		if err := r.Create(u); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			dup := *u
			return &dup, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetByHandle(handle string) (*models.User, error) {
	u, ok := r.users[handle]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	dup := *u
	return &dup, nil
}

func (r *fakeUserRepo) Update(user *models.User) error {
	dup := *user
	r.users[user.Handle] = &dup
	return nil
}

func (r *fakeUserRepo) CreateRefreshToken(token *models.RefreshToken) error {
	r.tokens[token.Token] = token
	return nil
}

func (r *fakeUserRepo) GetRefreshToken(token string) (*models.RefreshToken, error) {
	t, ok := r.tokens[token]
	if !ok {
		return nil, repositories.ErrTokenNotFound
	}
	return t, nil
}

func (r *fakeUserRepo) DeleteRefreshToken(token string) error {
	delete(r.tokens, token)
	return nil
}

const (
	testSecret        = "test-secret"
	testRefreshSecret = "test-refresh-secret"
)

func newTestService() (Service, *fakeUserRepo) {
	repo := newFakeUserRepo()
	return NewService(repo, testSecret, testRefreshSecret), repo
}

func seedUser(t *testing.T, repo *fakeUserRepo, handle, password, role string) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := &models.User{Handle: handle, Password: string(hashed), Role: role}
	require.NoError(t, repo.Create(user))
	return user
}

func TestService_Register(t *testing.T) {
	svc, repo := newTestService()

	user, err := svc.Register(RegisterInput{
		Handle: "alice", Password: "secret123", Role: models.RoleUser, Family: "north",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "secret123", user.Password)

	_, err = svc.Register(RegisterInput{Handle: "alice", Password: "other1234", Role: models.RoleUser})
	assert.ErrorIs(t, err, errors.ErrUserExists)

	_, err = svc.Register(RegisterInput{Handle: "bob", Password: "secret123", Role: "MANAGER"})
	assert.ErrorIs(t, err, errors.ErrUnknownRole)

	_, err = svc.Register(RegisterInput{Handle: "", Password: "secret123", Role: models.RoleUser})
	assert.ErrorIs(t, err, errors.ErrMissingFields)

	assert.Len(t, repo.users, 1)
}

func TestService_Login(t *testing.T) {
	svc, repo := newTestService()
	seedUser(t, repo, "alice", "secret123", models.RoleTreasurer)

	t.Run("valid credentials", func(t *testing.T) {
		user, accessToken, refreshToken, err := svc.Login("alice", "secret123")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Handle)
		require.NotEmpty(t, accessToken)
		require.NotEmpty(t, refreshToken)

		claims, err := utils.ParseAccessToken(accessToken, testSecret)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, models.RoleTreasurer, claims.Role)

		// Refresh token is persisted for revocation.
		_, err = repo.GetRefreshToken(refreshToken)
		assert.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, _, err := svc.Login("alice", "wrong")
		assert.ErrorIs(t, err, errors.ErrInvalidCredentials)
	})

	t.Run("unknown handle", func(t *testing.T) {
		_, _, _, err := svc.Login("nobody", "secret123")
		assert.ErrorIs(t, err, errors.ErrInvalidCredentials)
	})
}

func TestService_Refresh(t *testing.T) {
	svc, repo := newTestService()
	user := seedUser(t, repo, "alice", "secret123", models.RoleUser)

	_, _, refreshToken, err := svc.Login("alice", "secret123")
	require.NoError(t, err)

	t.Run("valid refresh", func(t *testing.T) {
		accessToken, err := svc.Refresh(refreshToken)
		require.NoError(t, err)

		claims, err := utils.ParseAccessToken(accessToken, testSecret)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
	})

	t.Run("unknown token", func(t *testing.T) {
		forged, err := utils.GenerateRefreshToken(user.ID, testRefreshSecret, time.Hour)
		require.NoError(t, err)
		_, err = svc.Refresh(forged)
		assert.ErrorIs(t, err, errors.ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		stored := repo.tokens[refreshToken]
		stored.ExpiresAt = time.Now().Add(-time.Minute)
		_, err := svc.Refresh(refreshToken)
		assert.ErrorIs(t, err, errors.ErrInvalidToken)
	})

	t.Run("after logout", func(t *testing.T) {
		require.NoError(t, svc.Logout(refreshToken))
		_, err := svc.Refresh(refreshToken)
		assert.ErrorIs(t, err, errors.ErrInvalidToken)
	})
}

func TestService_ChangePassword(t *testing.T) {
	svc, repo := newTestService()
	user := seedUser(t, repo, "alice", "secret123", models.RoleUser)

	err := svc.ChangePassword(user.ID, "secret123", "newsecret1", "different")
	assert.ErrorIs(t, err, errors.ErrPasswordMismatch)

	err = svc.ChangePassword(user.ID, "wrong", "newsecret1", "newsecret1")
	assert.ErrorIs(t, err, errors.ErrInvalidCredentials)

	err = svc.ChangePassword(user.ID, "secret123", "newsecret1", "newsecret1")
	require.NoError(t, err)

	_, _, _, err = svc.Login("alice", "newsecret1")
	assert.NoError(t, err)
	_, _, _, err = svc.Login("alice", "secret123")
	assert.ErrorIs(t, err, errors.ErrInvalidCredentials)
}

func TestService_ResetPassword(t *testing.T) {
	svc, repo := newTestService()
	seedUser(t, repo, "alice", "secret123", models.RoleUser)

	err := svc.ResetPassword("nobody", "newsecret1", "newsecret1")
	assert.ErrorIs(t, err, errors.ErrAccountNotFound)

	err = svc.ResetPassword("alice", "newsecret1", "newsecret1")
	require.NoError(t, err)

	_, _, _, err = svc.Login("alice", "newsecret1")
	assert.NoError(t, err)
}

func TestService_BatchImport(t *testing.T) {
	svc, repo := newTestService()
	seedUser(t, repo, "taken", "secret123", models.RoleUser)

	csvData := strings.Join([]string{
		"handle,family,class,password,role",
		"alice,north,2027,pass1234,USER",
		"bob,south,2026,pass1234,TREASURER",
		",north,2027,pass1234,USER",
		"carol,east,2027,,USER",
		"alice,west,2028,pass1234,USER",
		"taken,north,2027,pass1234,USER",
		"dave,north,2027,pass1234,WIZARD",
	}, "\n")

	result, err := svc.BatchImport(strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, 2, result.CreatedCount)
	assert.Len(t, result.InvalidLines, 5)

	alice, err := repo.GetByHandle("alice")
	require.NoError(t, err)
	assert.Equal(t, "north", alice.Family)
	assert.Equal(t, models.RoleUser, alice.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(alice.Password), []byte("pass1234")))

	bob, err := repo.GetByHandle("bob")
	require.NoError(t, err)
	assert.Equal(t, models.RoleTreasurer, bob.Role)
}

func TestService_BatchImport_BadHeader(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.BatchImport(strings.NewReader("name,password\nalice,pass1234"))
	assert.ErrorIs(t, err, errors.ErrMissingFields)

	_, err = svc.BatchImport(strings.NewReader(""))
	assert.ErrorIs(t, err, errors.ErrMissingFields)
}
