package services

import (
	"testing"
	"time"

	"github.com/amercier/taskdeck-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *models.User {
	companyID := uuid.New()
	team := "backend"
	return &models.User{
		ID:        uuid.New(),
		Username:  "alice",
		Role:      models.RoleTeam,
		CompanyID: &companyID,
		TeamName:  &team,
	}
}

func TestNewJWTService(t *testing.T) {
	svc := NewJWTService("secret", 8*time.Hour)

	assert.NotNil(t, svc)
	assert.Equal(t, 8*time.Hour, svc.Expiry())
}

func TestJWTService_GenerateToken(t *testing.T) {
	svc := NewJWTService("test-secret", 8*time.Hour)

	token, err := svc.GenerateToken(testUser())

	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestJWTService_ValidateToken_Valid(t *testing.T) {
	svc := NewJWTService("test-secret", 8*time.Hour)
	user := testUser()

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)

	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Username, claims.Username)
	assert.Equal(t, user.Role, claims.Role)
	assert.Equal(t, user.CompanyID, claims.CompanyID)
	assert.Equal(t, user.TeamName, claims.TeamName)
	assert.Equal(t, "taskdeck-api", claims.Issuer)
}

func TestJWTService_ValidateToken_WrongSecret(t *testing.T) {
	svc1 := NewJWTService("secret-1", 8*time.Hour)
	svc2 := NewJWTService("secret-2", 8*time.Hour)

	token, err := svc1.GenerateToken(testUser())
	require.NoError(t, err)

	_, err = svc2.ValidateToken(token)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse token")
}

func TestJWTService_ValidateToken_Expired(t *testing.T) {
	// Create service with very short expiry
	svc := NewJWTService("test-secret", 1*time.Millisecond)

	token, err := svc.GenerateToken(testUser())
	require.NoError(t, err)

	// Wait for token to expire
	time.Sleep(10 * time.Millisecond)

	_, err = svc.ValidateToken(token)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse token")
}

func TestJWTService_ValidateToken_MalformedToken(t *testing.T) {
	svc := NewJWTService("test-secret", 8*time.Hour)

	testCases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt-token"},
		{"partial jwt", "eyJhbGciOiJIUzI1NiJ9."},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tc.token)
			assert.Error(t, err)
		})
	}
}

func TestJWTService_AdminClaimsOmitScope(t *testing.T) {
	svc := NewJWTService("test-secret", 8*time.Hour)
	admin := &models.User{ID: uuid.New(), Username: "admin", Role: models.RoleAdmin}

	token, err := svc.GenerateToken(admin)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)

	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Nil(t, claims.CompanyID)
	assert.Nil(t, claims.TeamName)
}
