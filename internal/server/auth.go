package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/desertthunder/carekeep/internal/auth"
	"github.com/desertthunder/carekeep/internal/models"
	"github.com/desertthunder/carekeep/internal/shared"
)

type contextKey string

const userKey contextKey = "user"

// UserFrom returns the account resolved by [Server.RequireUser].
func UserFrom(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req auth.Credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}

	if _, err := s.users.GetByEmail(req.Email); err == nil {
		writeError(w, http.StatusConflict, "account already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusBadRequest, "password cannot be hashed")
		return
	}

	user := models.NewUser(0, req.Email, req.Name, string(hash))
	if err := s.users.Create(user); err != nil {
		if errors.Is(err, shared.ErrInvalidArgument) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		s.logger.Error("signup failed", "email", req.Email, "error", err)
		writeError(w, http.StatusInternalServerError, "signup failed")
		return
	}

	s.logger.Info("account created", "email", user.Email())
	s.respondToken(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req auth.Credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	user, err := s.users.GetByEmail(req.Email)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Error("login lookup failed", "error", err)
		}
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash()), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	s.respondToken(w, http.StatusOK, user)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{
		"id":    user.ID(),
		"email": user.Email(),
		"name":  user.Name(),
	})
}

func (s *Server) respondToken(w http.ResponseWriter, status int, user *models.User) {
	expires := s.now().Add(s.ttl)
	token, err := s.issueToken(user, expires)
	if err != nil {
		s.logger.Error("token signing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "token signing failed")
		return
	}

	var resp auth.TokenResponse
	resp.Token = token
	resp.ExpiresAt = expires.UTC()
	resp.User.ID = user.ID()
	resp.User.Email = user.Email()
	resp.User.Name = user.Name()
	writeJSON(w, status, resp)
}

func (s *Server) issueToken(user *models.User, expires time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID(),
		"email": user.Email(),
		"exp":   expires.Unix(),
		"iat":   s.now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// RequireUser validates the bearer token and stores the account in the request context.
func (s *Server) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		}, jwt.WithTimeFunc(s.now))
		if err != nil || !token.Valid {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid claims")
			return
		}

		userID, ok := claims["sub"].(string)
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid user id in token")
			return
		}

		user, err := s.users.Get(userID)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unknown account")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}
