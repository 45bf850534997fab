package handlers

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/lekhan/internal/board"
	"github.com/lehigh-university-libraries/lekhan/internal/models"
	"github.com/lehigh-university-libraries/lekhan/internal/report"
)

type vaultResponse struct {
	Items     []models.VaultItem `json:"items"`
	Languages []string           `json:"languages"`
	Months    []string           `json:"months"`
	Board     []board.Column     `json:"board"`
}

// HandleListVault returns the filtered archive with its facets and kanban board
func (h *Handler) HandleListVault(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	entry.mu.Lock()
	items, err := h.store.List(r.Context(), entry.session)
	entry.mu.Unlock()
	if err != nil {
		h.writeVaultError(w, err)
		return
	}

	filtered := board.Filter(items, board.Criteria{
		Language: r.URL.Query().Get("language"),
		Month:    r.URL.Query().Get("month"),
		Location: time.Local,
	})

	h.writeJSON(w, vaultResponse{
		Items:     filtered,
		Languages: board.AvailableLanguages(items),
		Months:    board.AvailableMonths(items, time.Local),
		Board:     board.Columns(filtered),
	})
}

// lookupItem resolves the {id} path value within the request's session
func (h *Handler) lookupItem(w http.ResponseWriter, r *http.Request) (*sessionEntry, models.VaultItem, bool) {
	entry, ok := h.getSessionOrError(w, r)
	if !ok {
		return nil, models.VaultItem{}, false
	}

	entry.mu.Lock()
	item, found, err := h.store.Get(r.Context(), entry.session, r.PathValue("id"))
	entry.mu.Unlock()
	if err != nil {
		h.writeVaultError(w, err)
		return nil, models.VaultItem{}, false
	}
	if !found {
		h.writeError(w, "Item not found", http.StatusNotFound)
		return nil, models.VaultItem{}, false
	}
	return entry, item, true
}

func (h *Handler) HandleGetItem(w http.ResponseWriter, r *http.Request) {
	_, item, ok := h.lookupItem(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, item)
}

// HandleUpdateStatus moves an item on the board. Unknown ids are ignored.
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	var request struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	status, err := models.ParseStatus(request.Status)
	if err != nil {
		h.writeVaultError(w, err)
		return
	}

	entry.mu.Lock()
	err = h.store.UpdateStatus(r.Context(), entry.session, r.PathValue("id"), status)
	entry.mu.Unlock()
	if err != nil {
		h.writeVaultError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDeleteItem removes an item. Unknown ids are ignored.
func (h *Handler) HandleDeleteItem(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	entry.mu.Lock()
	err := h.store.Remove(r.Context(), entry.session, r.PathValue("id"))
	entry.mu.Unlock()
	if err != nil {
		h.writeVaultError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleReport renders the item as an A4 PDF
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	entry, item, ok := h.lookupItem(w, r)
	if !ok {
		return
	}

	data, err := report.RenderBytes(item.Result, report.Meta{
		Author:      entry.session.Owner().Name,
		GeneratedAt: h.now(),
	}, h.reportOpts)
	if err != nil {
		h.writeError(w, "Failed to render report: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="lekhan-report-%s.pdf"`, item.ID))
	if _, err := w.Write(data); err != nil {
		h.writeError(w, "Unable to write report", http.StatusInternalServerError)
	}
}

const previewPage = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>%s</title></head>
<body>
%s
</body></html>
`

// HandlePreview renders the item as an HTML page
func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	_, item, ok := h.lookupItem(w, r)
	if !ok {
		return
	}

	body, err := report.HTML(item)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, previewPage, html.EscapeString(item.Title), body)
}

func (h *Handler) HandleLanguages(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string][]models.Language{
		"source": models.SourceLanguages(),
		"target": models.TargetLanguages(),
	})
}

func (h *Handler) HandleModes(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, models.Modes())
}
