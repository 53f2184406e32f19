package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/wadjakorntonsri/shortlinks/pkg/adapters/session"
	"github.com/wadjakorntonsri/shortlinks/pkg/core/domain"
	"github.com/wadjakorntonsri/shortlinks/pkg/logger"
	"github.com/wadjakorntonsri/shortlinks/pkg/ports"
)

const (
	msgMissingFields = "Please enter all the fields"
	msgTooLong       = "Name or URL is too long"
	msgCreated       = "Record was successfully added"
)

type HTTPHandler struct {
	service ports.LinkService
	flashes *session.Store
}

func NewHTTPHandler(service ports.LinkService, flashes *session.Store) *HTTPHandler {
	return &HTTPHandler{service: service, flashes: flashes}
}

// List renders every link
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	flashes := h.flashes.Pop(w, r)

	links, err := h.service.ListLinks(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	renderPage(w, http.StatusOK, "show_all.html", pageData{
		Title:   "Links",
		Flashes: flashes,
		Links:   links,
	})
}

// NewForm renders the empty creation form
func (h *HTTPHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	renderPage(w, http.StatusOK, "new.html", pageData{
		Title:   "Add link",
		Flashes: h.flashes.Pop(w, r),
	})
}

// Create stores a link from form input. Invalid input re-renders the form
// with a warning instead of failing the request.
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeText(w, http.StatusBadRequest, "Invalid form body")
		return
	}
	name := r.PostForm.Get("name")
	url := r.PostForm.Get("url")

	link, err := h.service.CreateLink(r.Context(), name, url)
	if errors.Is(err, domain.ErrValidation) {
		msg := msgTooLong
		if name == "" || url == "" {
			msg = msgMissingFields
		}
		flashes := append(h.flashes.Pop(w, r), session.Flash{Category: "error", Message: msg})
		renderPage(w, http.StatusOK, "new.html", pageData{
			Title:   "Add link",
			Flashes: flashes,
			Name:    name,
			URL:     url,
		})
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	logger.Info().
		Int64("id", link.ID).
		Str("name", link.Name).
		Str("url", link.URL).
		Int64("counter", link.Counter).
		Msg("Record was successfully added")

	if err := h.flashes.Push(w, r, session.Flash{Category: "message", Message: msgCreated}); err != nil {
		logger.Warn().Err(err).Msg("store flash")
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// Redirect counts a visit and sends the visitor to the link's destination
func (h *HTTPHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	idStr := r.PathValue("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeText(w, http.StatusBadRequest, "Invalid link id %q", idStr)
		return
	}

	target, err := h.service.Visit(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeText(w, http.StatusNotFound, "Link %s not found", idStr)
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}

// Stats proxies click statistics for a link from the analytics API
func (h *HTTPHandler) Stats(w http.ResponseWriter, r *http.Request) {
	idStr := r.PathValue("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeText(w, http.StatusBadRequest, "Invalid link id %q", idStr)
		return
	}

	stats, err := h.service.ClickStats(r.Context(), id)
	var upstream *domain.UpstreamError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeText(w, http.StatusNotFound, "Link %s not found", idStr)
		return
	case errors.As(err, &upstream):
		logger.Warn().Err(err).Int64("id", id).Int("upstream_status", upstream.StatusCode).Msg("stats request failed")
		writeText(w, http.StatusBadRequest, "%s", upstream.Error())
		return
	case err != nil:
		h.internalError(w, r, err)
		return
	}

	writeJSON(w, stats.StatusCode, stats)
}

func (h *HTTPHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}

func (h *HTTPHandler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
	writeText(w, http.StatusInternalServerError, "Internal server error")
}
