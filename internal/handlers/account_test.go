package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/medideal/records-api/internal/auth"
	"github.com/medideal/records-api/internal/models"
	"github.com/medideal/records-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func doctorAccountRouter(store *stubStore[models.Doctor], tokens *auth.TokenService) chi.Router {
	svc := services.NewAccountService[models.Doctor, *models.Doctor](store, tokens)
	h := NewAccountHandler(svc, DecodeDoctorSignup)
	r := chi.NewRouter()
	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)
	return r
}

func testTokens() *auth.TokenService {
	return auth.NewTokenService("test-secret", time.Hour)
}

const signupBody = `{
	"name": "Doctor",
	"email": "doctor@deal.com",
	"password": "secret-password",
	"phone": "0123456789",
	"specialty": "cardiology"
}`

func TestSignupReturnsTokenWithoutPassword(t *testing.T) {
	var stored models.Doctor
	store := &stubStore[models.Doctor]{
		CreateFunc: func(ctx context.Context, entity *models.Doctor) error {
			entity.ID = uuid.New()
			stored = *entity
			return nil
		},
	}
	tokens := testTokens()

	rec := doRequest(doctorAccountRouter(store, tokens), http.MethodPost, "/signup", signupBody)
	assert.Equal(t, http.StatusOK, rec.Code)

	body := parseBody(t, rec)
	assert.Equal(t, "success", body["status"])

	token, ok := body["token"].(string)
	require.True(t, ok)
	subjectID, _, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, subjectID)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "doctor@deal.com", data["email"])
	assert.NotContains(t, data, "password")

	// The stored credential is a hash, never the plaintext
	assert.NotEqual(t, "secret-password", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret-password")))
}

func TestSignupRejectsShortPassword(t *testing.T) {
	store := &stubStore[models.Doctor]{}

	body := strings.Replace(signupBody, "secret-password", "short", 1)
	rec := doRequest(doctorAccountRouter(store, testTokens()), http.MethodPost, "/signup", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := auth.HashPassword("right-password")
	require.NoError(t, err)
	store := &stubStore[models.Doctor]{
		FindOneFunc: func(ctx context.Context, filter map[string]interface{}) (*models.Doctor, error) {
			assert.Equal(t, map[string]interface{}{"email": "doctor@deal.com"}, filter)
			return &models.Doctor{ID: uuid.New(), Email: "doctor@deal.com", Password: hash}, nil
		},
	}

	rec := doRequest(doctorAccountRouter(store, testTokens()), http.MethodPost, "/login",
		`{"email":"doctor@deal.com","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Email or password is incorrect", parseBody(t, rec)["message"])
}

func TestLoginUnknownEmail(t *testing.T) {
	store := &stubStore[models.Doctor]{
		FindOneFunc: func(ctx context.Context, filter map[string]interface{}) (*models.Doctor, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}

	rec := doRequest(doctorAccountRouter(store, testTokens()), http.MethodPost, "/login",
		`{"email":"nobody@deal.com","password":"whatever"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Email or password is incorrect", parseBody(t, rec)["message"])
}

func TestLoginSuccess(t *testing.T) {
	hash, err := auth.HashPassword("right-password")
	require.NoError(t, err)
	id := uuid.New()
	store := &stubStore[models.Doctor]{
		FindOneFunc: func(ctx context.Context, filter map[string]interface{}) (*models.Doctor, error) {
			return &models.Doctor{ID: id, Email: "doctor@deal.com", Password: hash}, nil
		},
	}
	tokens := testTokens()

	rec := doRequest(doctorAccountRouter(store, tokens), http.MethodPost, "/login",
		`{"email":"doctor@deal.com","password":"right-password"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	body := parseBody(t, rec)
	subjectID, _, err := tokens.Verify(body["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, id, subjectID)
}

func TestChangePasswordRequiresPrincipal(t *testing.T) {
	svc := services.NewAccountService[models.Doctor, *models.Doctor](&stubStore[models.Doctor]{}, testTokens())
	h := NewAccountHandler(svc, DecodeDoctorSignup)

	req := httptest.NewRequest(http.MethodPatch, "/changePassword",
		strings.NewReader(`{"oldPassword":"old-password","newPassword":"new-password"}`))
	rec := httptest.NewRecorder()
	h.ChangePassword(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Access denied, No token provided", parseBody(t, rec)["message"])
}
