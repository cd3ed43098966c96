package api

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/dgallion1/chatexport/internal/dom"
	"github.com/dgallion1/chatexport/internal/export"
	"github.com/dgallion1/chatexport/internal/markdown"
	"github.com/dgallion1/chatexport/internal/store"
	"github.com/google/uuid"
)

// result is one finished export, kept in the cache by input hash.
type result struct {
	ID         string
	Title      string
	Messages   int
	Markdown   string
	Filename   string
	Report     markdown.Report
	Stored     bool
	Key        string
	StoreError string
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, title, err := s.readPage(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("page exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(bytes.TrimSpace(data)) == 0 {
		jsonError(w, "page is empty", http.StatusBadRequest)
		return
	}

	key := contentKey(data, title)
	res, hit := s.cache.Get(key)
	if !hit {
		res, err = s.export(r, data, title)
		if errors.Is(err, export.ErrNoMessages) {
			jsonError(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		if err != nil {
			s.log.Error("export failed", "error", err)
			jsonError(w, "export failed", http.StatusInternalServerError)
			return
		}
		s.cache.Add(key, res)
	}
	s.log.Info("export served", "export_id", res.ID, "messages", res.Messages, "cached", hit)

	if r.URL.Query().Get("format") == "json" {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"export_id":   res.ID,
			"title":       res.Title,
			"messages":    res.Messages,
			"markdown":    res.Markdown,
			"filename":    res.Filename,
			"outline":     res.Report.Outline,
			"stats":       res.Report.Stats,
			"stored":      res.Stored,
			"key":         res.Key,
			"store_error": res.StoreError,
			"cached":      hit,
		})
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.Filename}))
	w.Header().Set("X-Export-Id", res.ID)
	_, _ = io.WriteString(w, res.Markdown)
}

// export runs the page through the assembler and persists the result when a
// store is configured. A storage failure is reported, not fatal.
func (s *Server) export(r *http.Request, data []byte, title string) (*result, error) {
	start := time.Now()
	root, err := dom.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	doc, err := s.assembler.ExportPage(root, export.Options{
		Title:        title,
		DefaultTitle: s.cfg.DefaultTitle,
		Classify:     s.classify,
	})
	if err != nil {
		return nil, err
	}
	if s.stats != nil {
		s.stats.Record(time.Since(start), len(doc.Messages))
	}

	res := &result{
		ID:       uuid.NewString(),
		Title:    doc.Title,
		Messages: len(doc.Messages),
		Markdown: doc.Markdown,
		Filename: store.Filename(doc.Title, doc.ExportedAt),
		Report:   markdown.Inspect(doc.Markdown),
	}
	if s.store != nil {
		key, err := s.store.Save(r.Context(), res.Filename, []byte(doc.Markdown))
		if err != nil {
			s.log.Warn("store export failed", "export_id", res.ID, "error", err)
			res.StoreError = err.Error()
		} else {
			res.Stored, res.Key = true, key
		}
	}
	return res, nil
}

// readPage returns the uploaded page and the title override. Multipart
// requests carry the page in the "file" field; anything else is read as the
// raw page body.
func (s *Server) readPage(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, "", err
		}
		return data, strings.TrimSpace(r.URL.Query().Get("title")), nil
	}

	// Extra 1MB for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("invalid multipart form: %w", err)
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("file is required: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read file: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, "", &http.MaxBytesError{Limit: s.cfg.MaxUploadBytes}
	}
	return data, strings.TrimSpace(r.FormValue("title")), nil
}

// contentKey identifies an export by its input and title override.
func contentKey(data []byte, title string) string {
	h := sha256.New()
	h.Write(data)
	h.Write([]byte{0})
	h.Write([]byte(title))
	return hex.EncodeToString(h.Sum(nil))
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
