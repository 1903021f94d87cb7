package app

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/voxeldragons/siteapi/internal/db"
	"github.com/voxeldragons/siteapi/internal/models"
	"github.com/voxeldragons/siteapi/internal/security"
	internalsettings "github.com/voxeldragons/siteapi/internal/settings"
	"gorm.io/gorm"
)

func openMigratedDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := db.Open("file:" + filepath.Join(t.TempDir(), "siteapi-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func TestCreateAdminUserWithConn(t *testing.T) {
	conn := openMigratedDB(t)

	if errCreate := CreateAdminUserWithConn(conn, "admin", "password", "mc.voxeldragons.it"); errCreate != nil {
		t.Fatalf("CreateAdminUserWithConn: %v", errCreate)
	}

	var admin models.Admin
	if errFind := conn.First(&admin).Error; errFind != nil {
		t.Fatalf("find admin: %v", errFind)
	}
	if admin.Username != "admin" {
		t.Fatalf("expected username admin, got %q", admin.Username)
	}
	if admin.Password == "password" {
		t.Fatalf("expected hashed password")
	}
	if !security.VerifyPassword(admin.Password, "password") {
		t.Fatalf("expected stored hash to verify")
	}
	if !admin.Active {
		t.Fatalf("expected first admin active")
	}

	var setting models.Setting
	if errFind := conn.Where("key = ?", internalsettings.ServerAddressKey).First(&setting).Error; errFind != nil {
		t.Fatalf("find server address setting: %v", errFind)
	}
	var address string
	if errUnmarshal := json.Unmarshal(setting.Value, &address); errUnmarshal != nil {
		t.Fatalf("unmarshal setting: %v", errUnmarshal)
	}
	if address != "mc.voxeldragons.it" {
		t.Fatalf("expected server address seeded, got %q", address)
	}
}

func TestCreateAdminUserWithConn_BlankAddressKeepsDefault(t *testing.T) {
	conn := openMigratedDB(t)

	if errCreate := CreateAdminUserWithConn(conn, "admin", "password", "  "); errCreate != nil {
		t.Fatalf("CreateAdminUserWithConn: %v", errCreate)
	}

	var setting models.Setting
	if errFind := conn.Where("key = ?", internalsettings.ServerAddressKey).First(&setting).Error; errFind != nil {
		t.Fatalf("find server address setting: %v", errFind)
	}
	var address string
	if errUnmarshal := json.Unmarshal(setting.Value, &address); errUnmarshal != nil {
		t.Fatalf("unmarshal setting: %v", errUnmarshal)
	}
	if address != internalsettings.DefaultServerAddress {
		t.Fatalf("expected default server address, got %q", address)
	}
}

func TestHasAdminInitialized(t *testing.T) {
	conn := openMigratedDB(t)

	initialized, err := HasAdminInitialized(conn)
	if err != nil {
		t.Fatalf("HasAdminInitialized: %v", err)
	}
	if initialized {
		t.Fatalf("expected no admin before seeding")
	}

	if errCreate := CreateAdminUserWithConn(conn, "admin", "password", ""); errCreate != nil {
		t.Fatalf("CreateAdminUserWithConn: %v", errCreate)
	}

	initialized, err = HasAdminInitialized(conn)
	if err != nil {
		t.Fatalf("HasAdminInitialized: %v", err)
	}
	if !initialized {
		t.Fatalf("expected admin after seeding")
	}
}
