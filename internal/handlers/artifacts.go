package handlers

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/crucial707/studybuddy/internal/export"
	"github.com/crucial707/studybuddy/internal/metrics"
	"github.com/crucial707/studybuddy/internal/models"
	"github.com/crucial707/studybuddy/internal/repo"
	"github.com/go-chi/chi/v5"
)

// artifacts serves the saved-file actions shared by the notes and speech pages:
// download, delete and export-all.
type artifacts struct {
	Page  PageID
	Kind  string // metrics label: note, transcript, audio
	Store *repo.ArtifactManager
	Sinks []export.Sink
}

// mount registers download, delete and export routes under prefix.
func (a *artifacts) mount(r chi.Router, prefix string) {
	r.Get(prefix+"/download/{name}", a.download)
	r.Post(prefix+"/delete/{name}", a.delete)
	r.Get(prefix+"/export", a.export)
}

func (a *artifacts) list() ([]models.Artifact, string) {
	list, err := a.Store.List()
	if err != nil {
		slog.Warn("list artifacts", "kind", a.Kind, "error", err)
		return nil, "Saved files could not be listed."
	}
	return list, ""
}

// save stores content and redirects back to the page with a confirmation.
func (a *artifacts) save(w http.ResponseWriter, r *http.Request, name string, content []byte) bool {
	saved, err := a.Store.Save(name, content)
	if errors.Is(err, repo.ErrInvalidName) {
		return false
	}
	if err != nil {
		internalError(w, r, err)
		return true
	}
	metrics.IncArtifactSaved(a.Kind)
	http.Redirect(w, r, a.Page.Path()+"?saved="+url.QueryEscape(saved), http.StatusSeeOther)
	return true
}

func (a *artifacts) download(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	data, err := a.Store.Read(name)
	if errors.Is(err, repo.ErrNotFound) || errors.Is(err, repo.ErrInvalidName) {
		renderError(w, r, http.StatusNotFound, "File not found", "No saved file called \""+name+"\".")
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}
	ctype := mime.TypeByExtension(filepath.Ext(name))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Write(data)
}

func (a *artifacts) delete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := a.Store.Delete(name); err != nil {
		if errors.Is(err, repo.ErrInvalidName) {
			renderError(w, r, http.StatusBadRequest, "Invalid file name", "Only saved files can be deleted.")
			return
		}
		internalError(w, r, err)
		return
	}
	http.Redirect(w, r, a.Page.Path()+"?deleted="+url.QueryEscape(name), http.StatusSeeOther)
}

// export zips every saved file, mirrors the archive to the configured sinks and
// sends it as a download.
func (a *artifacts) export(w http.ResponseWriter, r *http.Request) {
	path, err := a.Store.ExportAll()
	if err != nil {
		internalError(w, r, err)
		return
	}
	export.Mirror(r.Context(), slog.Default(), path, a.Sinks...)

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.Store.ArchiveName}))
	http.ServeFile(w, r, path)
}

// flash turns the ?saved= and ?deleted= redirects into a message.
func flash(r *http.Request) string {
	q := r.URL.Query()
	if n := q.Get("saved"); n != "" {
		return "Saved " + n
	}
	if n := q.Get("deleted"); n != "" {
		return "Deleted " + n
	}
	return ""
}
