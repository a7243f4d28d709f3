package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xela07ax/cyberinvest-pro/internal/domain"
	"github.com/xela07ax/cyberinvest-pro/internal/inventory"
	"github.com/xela07ax/cyberinvest-pro/internal/notify"
)

const (
	msgAssetAdded   = "New asset added successfully!"
	msgAssetUpdated = "Asset updated successfully!"
	msgAssetDeleted = "Asset deleted successfully!"
)

type InventoryHandler struct {
	inv      *inventory.Inventory
	notifier notify.Notifier
}

func NewInventoryHandler(inv *inventory.Inventory, notifier notify.Notifier) *InventoryHandler {
	return &InventoryHandler{inv: inv, notifier: notifier}
}

// List GET /api/v1/inventory
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.inv.List())
}

// Summary GET /api/v1/inventory/summary
func (h *InventoryHandler) Summary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.inv.Summary())
}

// Create POST /api/v1/inventory. Пустое тело добавляет запись-шаблон.
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var asset domain.AssetRecord
	err := json.NewDecoder(r.Body).Decode(&asset)
	switch {
	case errors.Is(err, io.EOF):
		asset = h.inv.Add()
	case err != nil:
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	default:
		asset, err = h.inv.Create(asset)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}

	h.notifier.Notify(r.Context(), msgAssetAdded, notify.SeveritySuccess)
	writeJSON(w, http.StatusCreated, asset)
}

// Update PUT /api/v1/inventory/{id}
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := assetID(w, r)
	if !ok {
		return
	}
	var patch inventory.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	asset, err := h.inv.Update(id, patch)
	if err != nil {
		if errors.Is(err, inventory.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	h.notifier.Notify(r.Context(), msgAssetUpdated, notify.SeveritySuccess)
	writeJSON(w, http.StatusOK, asset)
}

// Delete DELETE /api/v1/inventory/{id}
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := assetID(w, r)
	if !ok {
		return
	}
	if err := h.inv.Delete(id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	h.notifier.Notify(r.Context(), msgAssetDeleted, notify.SeveritySuccess)
	w.WriteHeader(http.StatusNoContent)
}

func assetID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "asset id must be an integer")
		return 0, false
	}
	return id, true
}
