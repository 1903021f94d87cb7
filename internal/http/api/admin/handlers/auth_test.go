package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/voxeldragons/siteapi/internal/config"
	"github.com/voxeldragons/siteapi/internal/models"
	"github.com/voxeldragons/siteapi/internal/security"
	"gorm.io/gorm"
)

func seedAdmin(t *testing.T, conn *gorm.DB, username, password string, active bool) models.Admin {
	t.Helper()
	hash, err := security.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	admin := models.Admin{Username: username, Password: hash, Active: active}
	if errCreate := conn.Create(&admin).Error; errCreate != nil {
		t.Fatalf("seed admin: %v", errCreate)
	}
	return admin
}

func newAuthEngine(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	conn := openTestDB(t)
	engine := newTestEngine()
	handler := NewAuthHandler(conn, config.JWTConfig{Secret: "test-secret", Expiry: time.Hour})
	engine.POST("/login", handler.Login)
	return engine, conn
}

func TestLogin_Success(t *testing.T) {
	engine, conn := newAuthEngine(t)
	seedAdmin(t, conn, "admin", "hunter22", true)

	rec := doJSON(t, engine, http.MethodPost, "/login", gin.H{"username": "admin", "password": "hunter22"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	token, ok := body["token"].(string)
	if !ok || token == "" {
		t.Fatalf("expected token in response, got %v", body)
	}
	claims, errParse := security.ParseAdminToken("test-secret", token)
	if errParse != nil {
		t.Fatalf("parse issued token: %v", errParse)
	}
	if claims.Username != "admin" {
		t.Fatalf("expected username claim, got %q", claims.Username)
	}
}

func TestLogin_WrongPasswordAndUnknownUserLookAlike(t *testing.T) {
	engine, conn := newAuthEngine(t)
	seedAdmin(t, conn, "admin", "hunter22", true)

	wrongPass := doJSON(t, engine, http.MethodPost, "/login", gin.H{"username": "admin", "password": "nope"})
	unknownUser := doJSON(t, engine, http.MethodPost, "/login", gin.H{"username": "ghost", "password": "nope"})

	if wrongPass.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: expected 401, got %d", wrongPass.Code)
	}
	if unknownUser.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user: expected 401, got %d", unknownUser.Code)
	}
	if wrongPass.Body.String() != unknownUser.Body.String() {
		t.Fatalf("expected identical bodies for wrong password and unknown user")
	}
}

func TestLogin_DisabledAdmin(t *testing.T) {
	engine, conn := newAuthEngine(t)
	seedAdmin(t, conn, "admin", "hunter22", false)

	rec := doJSON(t, engine, http.MethodPost, "/login", gin.H{"username": "admin", "password": "hunter22"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestChangePassword(t *testing.T) {
	conn := openTestDB(t)
	admin := seedAdmin(t, conn, "admin", "oldpassword", true)

	engine := newTestEngine()
	handler := NewAuthHandler(conn, config.JWTConfig{Secret: "test-secret", Expiry: time.Hour})
	engine.POST("/password", func(c *gin.Context) {
		c.Set("adminID", admin.ID)
		handler.ChangePassword(c)
	})
	engine.POST("/login", handler.Login)

	rec := doJSON(t, engine, http.MethodPost, "/password", gin.H{
		"old_password": "wrong",
		"new_password": "newpassword",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong old password: expected 401, got %d", rec.Code)
	}

	rec = doJSON(t, engine, http.MethodPost, "/password", gin.H{
		"old_password": "oldpassword",
		"new_password": "short",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("short new password: expected 400, got %d", rec.Code)
	}

	rec = doJSON(t, engine, http.MethodPost, "/password", gin.H{
		"old_password": "oldpassword",
		"new_password": "newpassword",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("change password: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, engine, http.MethodPost, "/login", gin.H{"username": "admin", "password": "newpassword"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login with new password: expected 200, got %d", rec.Code)
	}
	rec = doJSON(t, engine, http.MethodPost, "/login", gin.H{"username": "admin", "password": "oldpassword"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("login with old password: expected 401, got %d", rec.Code)
	}
}
