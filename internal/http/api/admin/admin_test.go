package admin

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/voxeldragons/siteapi/internal/config"
	"github.com/voxeldragons/siteapi/internal/db"
	"github.com/voxeldragons/siteapi/internal/models"
	"github.com/voxeldragons/siteapi/internal/security"
	"github.com/voxeldragons/siteapi/internal/storage"
	"gorm.io/gorm"
)

var testJWTConfig = config.JWTConfig{Secret: "test-secret", Expiry: time.Hour}

func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	conn, err := db.Open("file:" + filepath.Join(t.TempDir(), "siteapi-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	store, errStore := storage.NewStore(config.StorageConfig{UploadDir: t.TempDir()})
	if errStore != nil {
		t.Fatalf("new store: %v", errStore)
	}

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	RegisterAdminRoutes(engine, conn, testJWTConfig, store)
	return engine, conn
}

func seedAdmin(t *testing.T, conn *gorm.DB, username, password string) models.Admin {
	t.Helper()
	hash, err := security.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	admin := models.Admin{Username: username, Password: hash, Active: true}
	if errCreate := conn.Create(&admin).Error; errCreate != nil {
		t.Fatalf("seed admin: %v", errCreate)
	}
	return admin
}

func loginToken(t *testing.T, engine *gin.Engine, username, password string) string {
	t.Helper()
	payload, _ := json.Marshal(map[string]string{"username": username, "password": password})
	req := httptest.NewRequest(http.MethodPost, "/v0/admin/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return body["token"]
}

func TestAdminRoutes_RequireToken(t *testing.T) {
	engine, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/v0/admin/packages", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v0/admin/packages", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: expected 401, got %d", rec.Code)
	}
}

func TestAdminRoutes_TokenGrantsAccess(t *testing.T) {
	engine, conn := newTestServer(t)
	seedAdmin(t, conn, "admin", "hunter22")
	token := loginToken(t, engine, "admin", "hunter22")

	req := httptest.NewRequest(http.MethodGet, "/v0/admin/packages", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("with token: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestAdminRoutes_DisabledAdminRejected(t *testing.T) {
	engine, conn := newTestServer(t)
	admin := seedAdmin(t, conn, "admin", "hunter22")
	token := loginToken(t, engine, "admin", "hunter22")

	if err := conn.Model(&models.Admin{}).Where("id = ?", admin.ID).Update("active", false).Error; err != nil {
		t.Fatalf("disable admin: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v0/admin/packages", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("disabled admin: expected 403, got %d", rec.Code)
	}
}

func TestAdminRoutes_Upload(t *testing.T) {
	engine, conn := newTestServer(t)
	seedAdmin(t, conn, "admin", "hunter22")
	token := loginToken(t, engine, "admin", "hunter22")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="dragon.png"`)
	header.Set("Content-Type", "image/png")
	part, errPart := writer.CreatePart(header)
	if errPart != nil {
		t.Fatalf("create part: %v", errPart)
	}
	if _, errWrite := part.Write([]byte("fake png bytes")); errWrite != nil {
		t.Fatalf("write part: %v", errWrite)
	}
	if errField := writer.WriteField("folder", "packages"); errField != nil {
		t.Fatalf("write field: %v", errField)
	}
	if errClose := writer.Close(); errClose != nil {
		t.Fatalf("close writer: %v", errClose)
	}

	req := httptest.NewRequest(http.MethodPost, "/v0/admin/uploads", &buf)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if !strings.HasPrefix(body["url"], storage.PublicPrefix+"/packages/") {
		t.Fatalf("expected upload url under %s/packages/, got %q", storage.PublicPrefix, body["url"])
	}
}

func TestHealthz(t *testing.T) {
	engine, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", rec.Code)
	}
}
