package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/lekhan/internal/analysis"
	"github.com/lehigh-university-libraries/lekhan/internal/models"
	"github.com/lehigh-university-libraries/lekhan/internal/vault"
)

// HandleAnalyze runs one analysis for the session and archives the result.
// Only one analysis may be in flight per session. A "replace" form value
// re-runs an archived item and swaps it in place; the item's own image and
// languages are used for anything the form leaves out.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	if !entry.busy.CompareAndSwap(false, true) {
		h.writeError(w, "An analysis is already running for this session", http.StatusConflict)
		return
	}
	defer entry.busy.Store(false)

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes+1024*1024)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		h.writeError(w, "Failed to parse upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	mode, err := models.ParseMode(r.FormValue("mode"))
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if mode == models.ModeLayout {
		h.writeError(w, analysis.ErrReservedMode.Error(), http.StatusBadRequest)
		return
	}

	var existing *models.VaultItem
	replaceID := r.FormValue("replace")
	if replaceID != "" {
		entry.mu.Lock()
		item, found, err := h.store.Get(r.Context(), entry.session, replaceID)
		entry.mu.Unlock()
		if err != nil {
			h.writeVaultError(w, err)
			return
		}
		if !found {
			h.writeError(w, "Item not found", http.StatusNotFound)
			return
		}
		existing = &item
	}

	up, err := h.readUpload(r)
	if errors.Is(err, errNoImage) && existing != nil {
		up, err = archivedUpload(*existing)
	}
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	source, target := resolveLanguages(r, existing)

	result, err := h.analyzer.Analyze(r.Context(), analysis.Request{
		Image:          up.Data,
		MIMEType:       up.MIMEType,
		Mode:           mode,
		SourceLanguage: source,
		TargetLanguage: target,
	})
	if err != nil {
		if errors.Is(err, analysis.ErrReservedMode) || errors.Is(err, models.ErrUnknownMode) {
			h.writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.writeError(w, "Analysis failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	item := vault.NewItem(h.now(), result.Result, up.Data, up.MIMEType, source, target)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if existing != nil {
		_, found, err := h.store.Get(r.Context(), entry.session, existing.ID)
		if err != nil {
			h.writeVaultError(w, err)
			return
		}
		if !found {
			h.writeError(w, "Item not found", http.StatusNotFound)
			return
		}
		item.ID = existing.ID
		item.Status = existing.Status
		if err := h.store.Replace(r.Context(), entry.session, item); err != nil {
			h.writeVaultError(w, err)
			return
		}
		item.OwnerID = entry.session.Owner().ID
		slog.Info("Archived item re-analyzed", "id", item.ID, "mode", mode)
		h.writeJSON(w, item)
		return
	}

	saved, err := h.store.Append(r.Context(), entry.session, item)
	if err != nil {
		h.writeVaultError(w, err)
		return
	}
	h.writeJSONStatus(w, http.StatusCreated, saved)
}

// resolveLanguages prefers the form values, then the archived item's languages, then the defaults
func resolveLanguages(r *http.Request, existing *models.VaultItem) (models.Language, models.Language) {
	source := models.LookupSource(r.FormValue("source_lang"))
	target := models.LookupTarget(r.FormValue("target_lang"))
	if existing == nil {
		return source, target
	}
	if r.FormValue("source_lang") == "" {
		if l, ok := models.SourceByName(existing.SourceLanguage); ok {
			source = l
		}
	}
	if r.FormValue("target_lang") == "" {
		if l, ok := models.TargetByName(existing.TargetLanguage); ok {
			target = l
		}
	}
	return source, target
}
