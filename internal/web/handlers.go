package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/nao1215/llmctx/internal/display"
	"github.com/nao1215/llmctx/internal/model"
	"github.com/nao1215/llmctx/internal/redact"
	"github.com/nao1215/llmctx/internal/report"
	"github.com/nao1215/llmctx/internal/store"
)

// indexPage is the data of templates/index.html.
type indexPage struct {
	DataFile      string
	Options       model.FormOptions
	GitChoices    []string
	CustomAccount string
	Prefs         *model.Preferences

	Info      *model.SystemInfo
	InfoError string
	RAM       string

	Saved    bool
	Restored bool
	Error    string

	HasDocument  bool
	LastUpdated  string
	DocumentJSON string
	KoreanJSON   string

	History []store.SnapshotMetadata
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := s.newPage(r, nil)
	page.Saved = q.Get("saved") != ""
	page.Restored = q.Get("restored") != ""
	s.render(w, http.StatusOK, page)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	prefs, err := parsePreferences(w, r)
	if err != nil {
		page := s.newPage(r, nil)
		page.Error = err.Error()
		s.render(w, http.StatusBadRequest, page)
		return
	}

	doc, err := s.ws.Save(r.Context(), prefs)
	if doc != nil && err != nil {
		// data.json was written; only the history snapshot is missing.
		s.logger.Warn("saved data file without history", "error", err)
		err = nil
	}
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, model.ErrInvalidOption) {
			status = http.StatusBadRequest
		}
		s.logger.Warn("failed to save data file", "error", err)
		page := s.newPage(r, prefs)
		page.Error = err.Error()
		s.render(w, status, page)
		return
	}
	http.Redirect(w, r, "/?saved=1", http.StatusSeeOther)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if _, err := s.ws.Refresh(r.Context()); err != nil {
		s.logger.Warn("failed to refresh system info", "error", err)
		page := s.newPage(r, nil)
		page.Error = err.Error()
		s.render(w, http.StatusInternalServerError, page)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.ws.Restore(r.Context(), id); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		}
		page := s.newPage(r, nil)
		page.Error = err.Error()
		s.render(w, status, page)
		return
	}
	http.Redirect(w, r, "/?restored=1", http.StatusSeeOther)
}

// handleDataFile serves the file on disk, not the cached document, so the
// download is byte-identical to what other tools read.
func (s *Server) handleDataFile(w http.ResponseWriter, _ *http.Request) {
	data, err := os.ReadFile(s.ws.DataFile())
	if errors.Is(err, os.ErrNotExist) {
		writeError(w, http.StatusNotFound, ErrNoDocument)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="data.json"`)
	_, _ = w.Write(data)
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.ws.Latest()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if doc == nil {
		writeError(w, http.StatusNotFound, ErrNoDocument)
		return
	}

	data, err := report.MarshalDocument(doc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if r.URL.Query().Get("lang") == "ko" {
		data, err = display.TranslateIndent(data, display.KoreanKeyMap(), "", report.DocumentIndent)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		data = append(data, '\n')
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write(data)
}

// handleSystem returns the collected facts with the network listing masked.
// format=markdown and format=text select the other report writers.
func (s *Server) handleSystem(w http.ResponseWriter, r *http.Request) {
	info, err := s.ws.SystemInfo(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	masked := *info
	masked.NetworkDetails = redact.MaskNetworkDetails(info.NetworkDetails)

	format := r.URL.Query().Get("format")
	var buf bytes.Buffer
	writer, err := report.NewWriter(format, &buf)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if _, err := writer.WriteSystemInfo(&masked); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	switch format {
	case report.FormatMarkdown, "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	case report.FormatText:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	default:
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	h := s.ws.History()
	if h == nil {
		writeJSON(w, http.StatusOK, []historyEntry{})
		return
	}
	metas, err := h.List(r.Context(), 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	entries := make([]historyEntry, 0, len(metas))
	for _, m := range metas {
		entries = append(entries, historyEntry{
			ID:          m.ID,
			SavedAt:     m.SavedAt.Format(model.TimestampLayout),
			LastUpdated: m.LastUpdated,
			OS:          m.OS,
			IDE:         m.IDE,
			Digest:      m.Digest,
		})
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// historyEntry is one element of GET /api/history.
type historyEntry struct {
	ID          string `json:"id"`
	SavedAt     string `json:"saved_at"`
	LastUpdated string `json:"last_updated"`
	OS          string `json:"os"`
	IDE         string `json:"ide"`
	Digest      string `json:"digest"`
}

// newPage assembles the form state. prefs overrides the values derived
// from the saved document, which keeps the user's input after a rejected
// submission.
func (s *Server) newPage(r *http.Request, prefs *model.Preferences) *indexPage {
	opts := s.ws.FormOptions()
	page := &indexPage{
		DataFile:      s.ws.DataFile(),
		Options:       opts,
		GitChoices:    opts.GitAccountChoices(),
		CustomAccount: model.CustomGitAccount,
	}

	info, err := s.ws.SystemInfo(r.Context())
	if err != nil {
		page.InfoError = err.Error()
		page.Info = model.NewSystemInfo()
	} else {
		page.Info = info
		page.RAM = report.FormatRAM(info.Hardware)
	}

	doc, err := s.ws.Latest()
	if err != nil {
		page.Error = err.Error()
	}
	if prefs == nil {
		prefs = model.PreferencesFromDocument(doc, opts, s.ws.GOOS())
	}
	page.Prefs = prefs

	if doc != nil {
		page.HasDocument = true
		page.LastUpdated = doc.Metadata.LastUpdated
		if data, err := report.MarshalDocument(doc); err == nil {
			page.DocumentJSON = string(data)
			if ko, err := display.TranslateIndent(data, display.KoreanKeyMap(), "", report.DocumentIndent); err == nil {
				page.KoreanJSON = string(ko)
			}
		}
	}

	if h := s.ws.History(); h != nil && s.historyLimit > 0 {
		metas, err := h.List(r.Context(), s.historyLimit)
		if err != nil {
			s.logger.Warn("failed to list history", "error", err)
		}
		page.History = metas
	}
	return page
}

func (s *Server) render(w http.ResponseWriter, status int, page *indexPage) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "index.html", page); err != nil {
		s.logger.Error("failed to render form", "error", err)
		http.Error(w, "failed to render form", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
