package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/voxeldragons/siteapi/internal/models"
	"gorm.io/gorm"
)

// Catalog table names accepted by the dispatch endpoint.
const (
	tablePackages = "shop_packages"
	tableSkins    = "shop_skins"
	tableSettings = "site_settings"
)

// DispatchHandler serves the legacy single-endpoint admin protocol.
//
// Older admin clients post one `{action, table, id, data, key, value}`
// envelope; each action maps onto the same typed code paths the REST
// routes use.
type DispatchHandler struct {
	db *gorm.DB
}

// NewDispatchHandler constructs a DispatchHandler.
func NewDispatchHandler(db *gorm.DB) *DispatchHandler {
	return &DispatchHandler{db: db}
}

// dispatchRequest is the legacy action envelope.
type dispatchRequest struct {
	Action string          `json:"action"`
	Table  string          `json:"table"`
	ID     *uint64         `json:"id"`
	Data   json.RawMessage `json:"data"`
	Key    string          `json:"key"`
	Value  json.RawMessage `json:"value"`
}

// dispatchOK answers a successful envelope response.
func dispatchOK(c *gin.Context, status int, data any) {
	if data == nil {
		c.JSON(status, gin.H{"success": true})
		return
	}
	c.JSON(status, gin.H{"success": true, "data": data})
}

// dispatchFail answers a failed envelope response.
func dispatchFail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

// Execute routes one legacy envelope onto the typed operations.
func (h *DispatchHandler) Execute(c *gin.Context) {
	var req dispatchRequest
	if errBind := c.ShouldBindJSON(&req); errBind != nil {
		dispatchFail(c, http.StatusBadRequest, "invalid json")
		return
	}

	action := strings.TrimSpace(req.Action)
	table := strings.TrimSpace(req.Table)
	log.Infof("admin dispatch: %s on %s", action, table)

	// Any provided table must be one of the three known names, for the
	// settings actions too.
	switch table {
	case "", tablePackages, tableSkins, tableSettings:
	default:
		dispatchFail(c, http.StatusBadRequest, "invalid table")
		return
	}

	switch action {
	case "get-settings":
		h.getSettings(c)
		return
	case "update-setting":
		h.updateSetting(c, req)
		return
	}

	if table == "" {
		dispatchFail(c, http.StatusBadRequest, "invalid table")
		return
	}
	if table == tableSettings {
		// Settings rows only move through get-settings/update-setting.
		dispatchFail(c, http.StatusBadRequest, "unsupported action for site_settings")
		return
	}

	switch action {
	case "get-all":
		h.getAll(c, table)
	case "create":
		h.create(c, table, req.Data)
	case "update":
		h.update(c, table, req)
	case "delete":
		h.delete(c, table, req)
	case "toggle-active":
		h.toggleActive(c, table, req)
	default:
		dispatchFail(c, http.StatusBadRequest, "invalid action")
	}
}

// getAll lists every row of the table, inactive included.
func (h *DispatchHandler) getAll(c *gin.Context, table string) {
	conn := h.db.WithContext(c.Request.Context()).Order("sort_order ASC, created_at DESC")

	if table == tablePackages {
		var rows []models.ShopPackage
		if errFind := conn.Find(&rows).Error; errFind != nil {
			dispatchFail(c, http.StatusInternalServerError, "list failed")
			return
		}
		out := make([]gin.H, 0, len(rows))
		for _, row := range rows {
			out = append(out, formatPackage(&row))
		}
		dispatchOK(c, http.StatusOK, out)
		return
	}

	var rows []models.Skin
	if errFind := conn.Find(&rows).Error; errFind != nil {
		dispatchFail(c, http.StatusInternalServerError, "list failed")
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, formatSkin(&row))
	}
	dispatchOK(c, http.StatusOK, out)
}

// create inserts a new row built from the envelope's data payload.
func (h *DispatchHandler) create(c *gin.Context, table string, data json.RawMessage) {
	if table == tablePackages {
		var body createPackageRequest
		if errUnmarshal := json.Unmarshal(data, &body); errUnmarshal != nil {
			dispatchFail(c, http.StatusBadRequest, "invalid data")
			return
		}
		pkg, errBuild := buildPackage(body)
		if errBuild != nil {
			dispatchFail(c, http.StatusBadRequest, errBuild.Error())
			return
		}
		if errCreate := h.db.WithContext(c.Request.Context()).Create(&pkg).Error; errCreate != nil {
			dispatchFail(c, http.StatusInternalServerError, "create failed")
			return
		}
		dispatchOK(c, http.StatusCreated, formatPackage(&pkg))
		return
	}

	var body createSkinRequest
	if errUnmarshal := json.Unmarshal(data, &body); errUnmarshal != nil {
		dispatchFail(c, http.StatusBadRequest, "invalid data")
		return
	}
	skin, errBuild := buildSkin(body)
	if errBuild != nil {
		dispatchFail(c, http.StatusBadRequest, errBuild.Error())
		return
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&skin).Error; errCreate != nil {
		dispatchFail(c, http.StatusInternalServerError, "create failed")
		return
	}
	dispatchOK(c, http.StatusCreated, formatSkin(&skin))
}

// update patches the named fields of one row.
func (h *DispatchHandler) update(c *gin.Context, table string, req dispatchRequest) {
	if req.ID == nil {
		dispatchFail(c, http.StatusBadRequest, "id is required")
		return
	}

	if table == tablePackages {
		var body updatePackageRequest
		if errUnmarshal := json.Unmarshal(req.Data, &body); errUnmarshal != nil {
			dispatchFail(c, http.StatusBadRequest, "invalid data")
			return
		}
		updates, errUpdates := packageUpdates(body)
		if errUpdates != nil {
			dispatchFail(c, http.StatusBadRequest, errUpdates.Error())
			return
		}
		res := h.db.WithContext(c.Request.Context()).Model(&models.ShopPackage{}).Where("id = ?", *req.ID).Updates(updates)
		if res.Error != nil {
			dispatchFail(c, http.StatusInternalServerError, "update failed")
			return
		}
		if res.RowsAffected == 0 {
			dispatchFail(c, http.StatusNotFound, "not found")
			return
		}
		var pkg models.ShopPackage
		if errFind := h.db.WithContext(c.Request.Context()).First(&pkg, *req.ID).Error; errFind != nil {
			dispatchFail(c, http.StatusInternalServerError, "query failed")
			return
		}
		dispatchOK(c, http.StatusOK, formatPackage(&pkg))
		return
	}

	var body updateSkinRequest
	if errUnmarshal := json.Unmarshal(req.Data, &body); errUnmarshal != nil {
		dispatchFail(c, http.StatusBadRequest, "invalid data")
		return
	}
	updates, errUpdates := skinUpdates(body)
	if errUpdates != nil {
		dispatchFail(c, http.StatusBadRequest, errUpdates.Error())
		return
	}
	res := h.db.WithContext(c.Request.Context()).Model(&models.Skin{}).Where("id = ?", *req.ID).Updates(updates)
	if res.Error != nil {
		dispatchFail(c, http.StatusInternalServerError, "update failed")
		return
	}
	if res.RowsAffected == 0 {
		dispatchFail(c, http.StatusNotFound, "not found")
		return
	}
	var skin models.Skin
	if errFind := h.db.WithContext(c.Request.Context()).First(&skin, *req.ID).Error; errFind != nil {
		dispatchFail(c, http.StatusInternalServerError, "query failed")
		return
	}
	dispatchOK(c, http.StatusOK, formatSkin(&skin))
}

// delete removes one row.
func (h *DispatchHandler) delete(c *gin.Context, table string, req dispatchRequest) {
	if req.ID == nil {
		dispatchFail(c, http.StatusBadRequest, "id is required")
		return
	}

	var res *gorm.DB
	if table == tablePackages {
		res = h.db.WithContext(c.Request.Context()).Delete(&models.ShopPackage{}, *req.ID)
	} else {
		res = h.db.WithContext(c.Request.Context()).Delete(&models.Skin{}, *req.ID)
	}
	if res.Error != nil {
		dispatchFail(c, http.StatusInternalServerError, "delete failed")
		return
	}
	if res.RowsAffected == 0 {
		dispatchFail(c, http.StatusNotFound, "not found")
		return
	}
	dispatchOK(c, http.StatusOK, nil)
}

// toggleActive flips one row's active flag.
func (h *DispatchHandler) toggleActive(c *gin.Context, table string, req dispatchRequest) {
	if req.ID == nil {
		dispatchFail(c, http.StatusBadRequest, "id is required")
		return
	}

	if table == tablePackages {
		pkg, errToggle := togglePackageActive(c, h.db, *req.ID)
		if errToggle != nil {
			if errors.Is(errToggle, gorm.ErrRecordNotFound) {
				dispatchFail(c, http.StatusNotFound, "not found")
				return
			}
			dispatchFail(c, http.StatusInternalServerError, "toggle failed")
			return
		}
		dispatchOK(c, http.StatusOK, formatPackage(pkg))
		return
	}

	skin, errToggle := toggleSkinActive(c, h.db, *req.ID)
	if errToggle != nil {
		if errors.Is(errToggle, gorm.ErrRecordNotFound) {
			dispatchFail(c, http.StatusNotFound, "not found")
			return
		}
		dispatchFail(c, http.StatusInternalServerError, "toggle failed")
		return
	}
	dispatchOK(c, http.StatusOK, formatSkin(skin))
}

// getSettings lists every setting ordered by key.
func (h *DispatchHandler) getSettings(c *gin.Context) {
	var rows []models.Setting
	if errFind := h.db.WithContext(c.Request.Context()).Order("key ASC").Find(&rows).Error; errFind != nil {
		dispatchFail(c, http.StatusInternalServerError, "list settings failed")
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, formatSetting(&row))
	}
	dispatchOK(c, http.StatusOK, out)
}

// updateSetting changes one existing setting value.
func (h *DispatchHandler) updateSetting(c *gin.Context, req dispatchRequest) {
	key := strings.TrimSpace(req.Key)
	if key == "" || len(req.Value) == 0 {
		dispatchFail(c, http.StatusBadRequest, "key and value are required")
		return
	}

	setting, errUpdate := updateSettingValue(c, h.db, key, req.Value)
	if errUpdate != nil {
		if errors.Is(errUpdate, gorm.ErrRecordNotFound) {
			dispatchFail(c, http.StatusNotFound, "not found")
			return
		}
		dispatchFail(c, http.StatusInternalServerError, "update failed")
		return
	}
	dispatchOK(c, http.StatusOK, formatSetting(setting))
}
