// Package faviconhandler serves the favicon lookup API under /api.
package faviconhandler

import (
	"context"
	"errors"
	"favicon/internal/favicon"
	"favicon/pkg/logger"
	"favicon/pkg/serrors"
	"net/http"
	"strconv"

	"github.com/go-faster/jx"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

const (
	// FaviconPath is the lookup endpoint.
	FaviconPath = "/api/favicon"
	// CacheControl is sent with every favicon found.
	CacheControl = "public, max-age=86400"
	// SourceHeader names the candidate URL that served the favicon.
	SourceHeader = "X-Favicon-Source"
)

// Error messages returned in the JSON body of failed requests.
const (
	MsgMissingURL       = "URL parameter is required"
	MsgNotFound         = "Favicon not found"
	MsgMethodNotAllowed = "Method not allowed"
	MsgRouteNotFound    = "Not found"
	MsgTimeout          = "Request timed out"
	MsgInternal         = "Internal server error"
)

// Deps are the services the handler delegates to.
type Deps struct {
	Resolver favicon.Resolver
}

type Handler struct {
	deps Deps
}

func New(deps Deps) *Handler {
	return &Handler{deps: deps}
}

// Router returns an httprouter.Router serving the API. Unknown paths and
// methods get JSON errors.
func (h *Handler) Router() *httprouter.Router {
	r := httprouter.New()
	r.GET(FaviconPath, h.Favicon)
	r.NotFound = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusNotFound, MsgRouteNotFound)
	})
	r.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, MsgMethodNotAllowed)
	})
	// OPTIONS is answered by the CORS middleware in front of the router.
	r.HandleOPTIONS = false

	return r
}

// Favicon handles GET /api/favicon?url=<target>.
func (h *Handler) Favicon(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()

	target := r.URL.Query().Get("url")
	if target == "" {
		WriteError(w, http.StatusBadRequest, MsgMissingURL)

		return
	}

	ctx = logger.WithFields(ctx, zap.String("target", target))

	img, err := h.deps.Resolver.Resolve(ctx, target)
	if err != nil {
		h.writeResolveError(ctx, w, err)

		return
	}

	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.Header().Set("Cache-Control", CacheControl)
	w.Header().Set(SourceHeader, img.SourceURL)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
}

func (h *Handler) writeResolveError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, serrors.ErrNotFound):
		WriteError(w, http.StatusNotFound, MsgNotFound)
	case errors.Is(err, serrors.ErrTimeout):
		logger.Warn(ctx, "favicon lookup timed out", zap.Error(err))
		WriteError(w, http.StatusGatewayTimeout, MsgTimeout)
	default:
		// invalid input is reported as a server error, matching the public API
		logger.Error(ctx, "could not resolve favicon", zap.Error(err))
		WriteError(w, http.StatusInternalServerError, MsgInternal)
	}
}

// WriteError writes a {"error": msg} JSON body with the given status.
func WriteError(w http.ResponseWriter, status int, msg string) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	e.ObjStart()
	e.FieldStart("error")
	e.Str(msg)
	e.ObjEnd()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
