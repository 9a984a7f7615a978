package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/sosika-app/sosika-backend/config"
	"github.com/sosika-app/sosika-backend/database"
	"github.com/sosika-app/sosika-backend/database/dbhelper"
	"github.com/sosika-app/sosika-backend/middlewares"
	"github.com/sosika-app/sosika-backend/models"
	"github.com/sosika-app/sosika-backend/notifications"
	"github.com/sosika-app/sosika-backend/utils"
)

const refreshCookie = "refresh_token"

func setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(7 * 24 * time.Hour),
	})
}

func Register(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		http.Error(w, "all fields are required", http.StatusBadRequest)
		return
	}

	exists, err := dbhelper.IsUserExists(req.Email)
	if err != nil {
		logrus.WithError(err).Error("failed to check user existence")
		http.Error(w, "failed to register user", http.StatusInternalServerError)
		return
	}
	if exists {
		http.Error(w, "user already exists", http.StatusConflict)
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}

	var userID uuid.UUID
	txErr := database.Tx(func(tx *sql.Tx) error {
		var err error
		userID, err = dbhelper.CreateUser(tx, req.Name, req.Email, hashedPassword)
		if err != nil {
			return err
		}
		return dbhelper.AssignRole(tx, userID, models.RoleUser)
	})
	if txErr != nil {
		logrus.WithError(txErr).Error("failed to register user")
		http.Error(w, "failed to register user", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "User registered successfully",
		"user_id": userID,
	})
}

func Login(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "all fields are required", http.StatusBadRequest)
		return
	}

	userID, name, err := dbhelper.GetUserByPassword(req.Email, req.Password)
	if err != nil {
		http.Error(w, "invalid email or password", http.StatusUnauthorized)
		return
	}

	roles, err := dbhelper.GetUserRoles(userID)
	if err != nil {
		logrus.WithError(err).Error("failed to fetch user roles")
		http.Error(w, "failed to log in", http.StatusInternalServerError)
		return
	}

	accessToken, refreshToken, err := utils.GenerateTokens(userID, roles)
	if err != nil {
		http.Error(w, "failed to generate tokens", http.StatusInternalServerError)
		return
	}

	setRefreshCookie(w, refreshToken)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Login successful",
		"token":   accessToken,
		"userId":  userID,
		"name":    name,
	})
}

// RefreshToken mints a new access token from the refresh cookie.
func RefreshToken(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookie)
	if err != nil {
		http.Error(w, "refresh token missing", http.StatusUnauthorized)
		return
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (interface{}, error) {
		return config.SecretKey, nil
	})
	if err != nil || !token.Valid {
		http.Error(w, "invalid refresh token", http.StatusUnauthorized)
		return
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		http.Error(w, "invalid refresh token", http.StatusUnauthorized)
		return
	}

	roles, err := dbhelper.GetUserRoles(userID)
	if err != nil {
		logrus.WithError(err).Error("failed to fetch user roles")
		http.Error(w, "failed to refresh token", http.StatusInternalServerError)
		return
	}

	accessToken, err := utils.GenerateAccessToken(userID, roles)
	if err != nil {
		http.Error(w, "failed to generate token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": accessToken})
}

func Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Logged out successfully"})
}

func GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := dbhelper.GetUserProfile(claims.UserID)
	if err == sql.ErrNoRows {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	} else if err != nil {
		logrus.WithError(err).Error("failed to fetch user profile")
		http.Error(w, "failed to fetch profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

func UpdateProfile(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Name          *string    `json:"name"`
		Email         *string    `json:"email"`
		PhoneNumber   *string    `json:"phoneNumber"`
		CustomAddress *string    `json:"customAddress"`
		CollegeID     *uuid.UUID `json:"collegeId"`
	}

	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Name == nil && req.Email == nil && req.PhoneNumber == nil &&
		req.CustomAddress == nil && req.CollegeID == nil {
		http.Error(w, "no fields to update", http.StatusBadRequest)
		return
	}

	err = dbhelper.UpdateUserProfile(claims.UserID, req.Name, req.Email,
		req.PhoneNumber, req.CustomAddress, req.CollegeID)
	if err == sql.ErrNoRows {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	} else if err != nil {
		logrus.WithError(err).Error("failed to update user profile")
		http.Error(w, "failed to update profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Profile updated successfully"})
}

func UpdateUserLocation(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}

	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		http.Error(w, "latitude and longitude are required", http.StatusBadRequest)
		return
	}

	err = dbhelper.UpdateUserLocation(claims.UserID, *req.Latitude, *req.Longitude)
	if err == sql.ErrNoRows {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	} else if err != nil {
		logrus.WithError(err).Error("failed to update user location")
		http.Error(w, "failed to update location", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Location updated successfully"})
}

// SaveDeviceToken registers the FCM token used for courier-en-route pushes.
func SaveDeviceToken(store *notifications.TokenStore) http.HandlerFunc {
	type request struct {
		UserID uuid.UUID `json:"user_id"`
		Token  string    `json:"token"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if req.UserID == uuid.Nil || req.Token == "" {
			http.Error(w, "user_id and token are required", http.StatusBadRequest)
			return
		}

		if err := store.SaveToken(r.Context(), req.UserID, req.Token); err != nil {
			logrus.WithError(err).Error("failed to save device token")
			http.Error(w, "failed to save token", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Token saved successfully"})
	}
}

func RemoveDeviceToken(store *notifications.TokenStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(mux.Vars(r)["userId"])
		if err != nil {
			http.Error(w, "invalid user ID", http.StatusBadRequest)
			return
		}

		if err := store.RemoveToken(r.Context(), userID); err != nil {
			logrus.WithError(err).Error("failed to remove device token")
			http.Error(w, "failed to remove token", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Token removed successfully"})
	}
}

// SaveVendorPushSubscription stores a browser web-push subscription for the
// vendor dashboard.
func SaveVendorPushSubscription(store *notifications.TokenStore) http.HandlerFunc {
	type request struct {
		VendorID     uuid.UUID       `json:"vendor_id"`
		Subscription json.RawMessage `json:"subscription"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if req.VendorID == uuid.Nil || len(req.Subscription) == 0 {
			http.Error(w, "vendor_id and subscription are required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := store.AddVendorSubscription(ctx, req.VendorID, req.Subscription); err != nil {
			logrus.WithError(err).Error("failed to save push subscription")
			http.Error(w, "failed to save subscription", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"message": "Subscription saved"})
	}
}
