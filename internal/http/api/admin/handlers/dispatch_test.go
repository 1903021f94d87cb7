package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	internalsettings "github.com/voxeldragons/siteapi/internal/settings"
)

func newDispatchEngine(t *testing.T) *gin.Engine {
	t.Helper()
	engine := newTestEngine()
	handler := NewDispatchHandler(openTestDB(t))
	engine.POST("/shop", handler.Execute)
	return engine
}

func TestDispatch_CreateAndGetAll(t *testing.T) {
	engine := newDispatchEngine(t)

	rec := doJSON(t, engine, http.MethodPost, "/shop", gin.H{
		"action": "create",
		"table":  "shop_packages",
		"data": gin.H{
			"name":     "Pacchetto Leggendario",
			"price":    24.99,
			"rarity":   "Leggendario",
			"features": []string{"Spada unica", "Mantello"},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Fatalf("expected success envelope, got %v", body)
	}
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %v", body["data"])
	}
	if data["rarity"] != "Leggendario" {
		t.Fatalf("expected rarity preserved, got %v", data["rarity"])
	}

	rec = doJSON(t, engine, http.MethodPost, "/shop", gin.H{
		"action": "get-all",
		"table":  "shop_packages",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("get-all: expected 200, got %d", rec.Code)
	}
	body = decodeBody(t, rec)
	rows, okRows := body["data"].([]any)
	if !okRows || len(rows) != 1 {
		t.Fatalf("expected one package, got %v", body["data"])
	}
}

func TestDispatch_UpdateDeleteToggle(t *testing.T) {
	engine := newDispatchEngine(t)

	rec := doJSON(t, engine, http.MethodPost, "/shop", gin.H{
		"action": "create",
		"table":  "shop_skins",
		"data":   gin.H{"name": "Golem", "category": "Mostri"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	data := decodeBody(t, rec)["data"].(map[string]any)
	id := uint64(data["id"].(float64))

	rec = doJSON(t, engine, http.MethodPost, "/shop", gin.H{
		"action": "toggle-active",
		"table":  "shop_skins",
		"id":     id,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle: expected 200, got %d", rec.Code)
	}
	data = decodeBody(t, rec)["data"].(map[string]any)
	if data["is_active"] != false {
		t.Fatalf("expected toggled skin inactive, got %v", data["is_active"])
	}

	rec = doJSON(t, engine, http.MethodPost, "/shop", gin.H{
		"action": "update",
		"table":  "shop_skins",
		"id":     id,
		"data":   gin.H{"price": 4.99},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, engine, http.MethodPost, "/shop", gin.H{
		"action": "delete",
		"table":  "shop_skins",
		"id":     id,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, engine, http.MethodPost, "/shop", gin.H{
		"action": "delete",
		"table":  "shop_skins",
		"id":     id,
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", rec.Code)
	}
}

func TestDispatch_MissingID(t *testing.T) {
	engine := newDispatchEngine(t)

	rec := doJSON(t, engine, http.MethodPost, "/shop", gin.H{
		"action": "update",
		"table":  "shop_packages",
		"data":   gin.H{"price": 1},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["success"] != false || body["error"] != "id is required" {
		t.Fatalf("expected id-required error envelope, got %v", body)
	}
}

func TestDispatch_InvalidTableAndAction(t *testing.T) {
	engine := newDispatchEngine(t)

	rec := doJSON(t, engine, http.MethodPost, "/shop", gin.H{
		"action": "get-all",
		"table":  "admin_users",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid table: expected 400, got %d", rec.Code)
	}
	if decodeBody(t, rec)["error"] != "invalid table" {
		t.Fatalf("expected invalid table error")
	}

	rec = doJSON(t, engine, http.MethodPost, "/shop", gin.H{
		"action": "drop-all",
		"table":  "shop_packages",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid action: expected 400, got %d", rec.Code)
	}
}

func TestDispatch_SettingsActionsValidateTable(t *testing.T) {
	engine := newDispatchEngine(t)

	rec := doJSON(t, engine, http.MethodPost, "/shop", gin.H{
		"action": "get-settings",
		"table":  "admin_users",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bogus table: expected 400, got %d (%s)", rec.Code, rec.Body.String())
	}
	if decodeBody(t, rec)["error"] != "invalid table" {
		t.Fatalf("expected invalid table error")
	}

	rec = doJSON(t, engine, http.MethodPost, "/shop", gin.H{
		"action": "get-settings",
		"table":  "site_settings",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("site_settings table: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestDispatch_GenericActionOnSettingsTable(t *testing.T) {
	engine := newDispatchEngine(t)

	rec := doJSON(t, engine, http.MethodPost, "/shop", gin.H{
		"action": "get-all",
		"table":  "site_settings",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["error"] == "invalid table" {
		t.Fatalf("site_settings is a known table; expected a different error, got %v", body["error"])
	}
}

func TestDispatch_Settings(t *testing.T) {
	engine := newDispatchEngine(t)

	rec := doJSON(t, engine, http.MethodPost, "/shop", gin.H{"action": "get-settings"})
	if rec.Code != http.StatusOK {
		t.Fatalf("get-settings: expected 200, got %d", rec.Code)
	}
	rows, ok := decodeBody(t, rec)["data"].([]any)
	if !ok || len(rows) != len(internalsettings.Defaults) {
		t.Fatalf("expected %d seeded settings, got %v", len(internalsettings.Defaults), rows)
	}

	rec = doJSON(t, engine, http.MethodPost, "/shop", gin.H{
		"action": "update-setting",
		"key":    internalsettings.ServerAddressKey,
		"value":  "play.example.org",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update-setting: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	data := decodeBody(t, rec)["data"].(map[string]any)
	if data["value"] != "play.example.org" {
		t.Fatalf("expected updated value, got %v", data["value"])
	}

	rec = doJSON(t, engine, http.MethodPost, "/shop", gin.H{
		"action": "update-setting",
		"key":    "no_such_key",
		"value":  "x",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown key: expected 404, got %d", rec.Code)
	}
}
