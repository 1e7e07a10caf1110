package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fmtech/fmtech-api/config"
	"github.com/fmtech/fmtech-api/middleware"
	"github.com/fmtech/fmtech-api/models"
	"github.com/fmtech/fmtech-api/services"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Auto-migrate the User model
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	return router
}

// setupMockAuth0Server creates a mock HTTP server that simulates Auth0's /userinfo endpoint
func setupMockAuth0Server(userInfoMap map[string]*services.Auth0UserInfo) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userinfo" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		// Extract token from Authorization header
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || len(authHeader) < 7 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		token := authHeader[7:] // Remove "Bearer " prefix

		// Look up user info by token
		userInfo, exists := userInfoMap[token]
		if !exists {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(userInfo)
	}))
}

// mockAuthMiddleware simulates the Auth0 JWT middleware for testing
// It sets up the context exactly as the real EnsureValidToken middleware does
func mockAuthMiddleware(auth0ID, role, _ string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Set the user_id (Auth0 ID from 'sub' claim)
		c.Set("user_id", auth0ID)

		// Create custom claims matching the real structure
		customClaims := &middleware.CustomClaims{
			Role: role,
		}

		// Create a proper ValidatedClaims structure
		// This matches what the real JWT middleware creates
		mockClaims := &validator.ValidatedClaims{
			CustomClaims: customClaims,
		}

		// Store in context the same way the real middleware does
		c.Set("validated_claims", mockClaims)

		c.Next()
	}
}

func TestCreateUser(t *testing.T) {
	// Setup
	db := setupTestDB(t)
	config.SetDB(db)

	// Mock Auth0 userinfo responses keyed by access token
	userInfoMap := map[string]*services.Auth0UserInfo{
		"token-ana": {
			Sub:   "auth0|ana123",
			Email: "ana@fmtech.example",
			Name:  "Ana Souza",
		},
		"token-no-email": {
			Sub:  "auth0|noemail",
			Name: "No Email",
		},
		"token-no-name": {
			Sub:   "auth0|noname",
			Email: "noname@fmtech.example",
		},
	}
	mockServer := setupMockAuth0Server(userInfoMap)
	defer mockServer.Close()

	config.SetConfig(&config.Config{
		Auth0Domain: mockServer.URL,
	})

	tests := []struct {
		name           string
		auth0ID        string
		role           string
		accessToken    string
		expectedStatus int
		expectedError  string
		checkResponse  func(t *testing.T, response map[string]interface{})
	}{
		{
			name:           "Successfully create staff profile from Auth0 data",
			auth0ID:        "auth0|ana123",
			role:           "",
			accessToken:    "token-ana",
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				assert.True(t, response["success"].(bool))
				data := response["data"].(map[string]interface{})
				assert.Equal(t, "auth0|ana123", data["auth0_id"])
				assert.Equal(t, "Ana Souza", data["name"])
				assert.Equal(t, "ana@fmtech.example", data["email"])
				assert.Equal(t, models.RoleStaff, data["role"])
			},
		},
		{
			name:           "Fail with duplicate Auth0 ID",
			auth0ID:        "auth0|ana123",
			role:           "",
			accessToken:    "token-ana",
			expectedStatus: http.StatusConflict,
			expectedError:  "USER_EXISTS",
		},
		{
			name:           "Fail when Auth0 omits email",
			auth0ID:        "auth0|noemail",
			role:           "",
			accessToken:    "token-no-email",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "MISSING_EMAIL",
		},
		{
			name:           "Fail when Auth0 omits name",
			auth0ID:        "auth0|noname",
			role:           "",
			accessToken:    "token-no-name",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "MISSING_NAME",
		},
		{
			name:           "Fail with invalid access token",
			auth0ID:        "auth0|unknown",
			role:           "",
			accessToken:    "token-bogus",
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "AUTH0_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.POST("/users",
				mockAuthMiddleware(tt.auth0ID, tt.role, tt.accessToken),
				CreateUser,
			)

			req, _ := http.NewRequest(http.MethodPost, "/users", nil)
			req.Header.Set("Authorization", "Bearer "+tt.accessToken)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response map[string]interface{}
			err := json.Unmarshal(w.Body.Bytes(), &response)
			assert.NoError(t, err)

			if tt.expectedError != "" {
				assert.False(t, response["success"].(bool))
				errorData := response["error"].(map[string]interface{})
				assert.Equal(t, tt.expectedError, errorData["code"])
			}

			if tt.checkResponse != nil {
				tt.checkResponse(t, response)
			}
		})
	}
}

func TestCreateUser_AdminRoleClaim(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	userInfoMap := map[string]*services.Auth0UserInfo{
		"token-admin": {
			Sub:   "auth0|admin1",
			Email: "admin@fmtech.example",
			Name:  "Shop Admin",
		},
	}
	mockServer := setupMockAuth0Server(userInfoMap)
	defer mockServer.Close()

	config.SetConfig(&config.Config{Auth0Domain: mockServer.URL})

	router := setupTestRouter()
	router.POST("/users",
		mockAuthMiddleware("auth0|admin1", models.RoleAdmin, "token-admin"),
		CreateUser,
	)

	req, _ := http.NewRequest(http.MethodPost, "/users", nil)
	req.Header.Set("Authorization", "Bearer token-admin")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)

	// Role claim from the token should override the staff default
	data := response["data"].(map[string]interface{})
	assert.Equal(t, models.RoleAdmin, data["role"])
}

func TestGetMyProfile(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	user := models.User{
		Auth0ID: "auth0|staff1",
		Name:    "Carlos Lima",
		Email:   "carlos@fmtech.example",
		Role:    models.RoleStaff,
	}
	db.Create(&user)

	tests := []struct {
		name           string
		auth0ID        string
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "Successfully get own profile",
			auth0ID:        user.Auth0ID,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Fail when profile does not exist",
			auth0ID:        "auth0|stranger",
			expectedStatus: http.StatusNotFound,
			expectedError:  "USER_NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.GET("/users/me",
				mockAuthMiddleware(tt.auth0ID, models.RoleStaff, "mock-token"),
				GetMyProfile,
			)

			req, _ := http.NewRequest(http.MethodGet, "/users/me", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response map[string]interface{}
			err := json.Unmarshal(w.Body.Bytes(), &response)
			assert.NoError(t, err)

			if tt.expectedError != "" {
				errorData := response["error"].(map[string]interface{})
				assert.Equal(t, tt.expectedError, errorData["code"])
			} else {
				data := response["data"].(map[string]interface{})
				assert.Equal(t, user.Email, data["email"])
			}
		})
	}
}

func TestUpdateMyProfile(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	user := models.User{
		Auth0ID: "auth0|staff2",
		Name:    "Old Name",
		Email:   "old@fmtech.example",
		Role:    models.RoleStaff,
	}
	db.Create(&user)

	router := setupTestRouter()
	router.PUT("/users/me",
		mockAuthMiddleware(user.Auth0ID, models.RoleStaff, "mock-token"),
		UpdateMyProfile,
	)

	body, _ := json.Marshal(map[string]interface{}{
		"name": "New Name",
	})
	req, _ := http.NewRequest(http.MethodPut, "/users/me", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)

	data := response["data"].(map[string]interface{})
	assert.Equal(t, "New Name", data["name"])
	// Email untouched when not provided
	assert.Equal(t, "old@fmtech.example", data["email"])
}
