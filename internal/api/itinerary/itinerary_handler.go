package itinerary

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	appMiddleware "github.com/FACorreiaa/go-itinerary-engine/app/middleware"
	"github.com/FACorreiaa/go-itinerary-engine/internal/api"
	"github.com/FACorreiaa/go-itinerary-engine/internal/api/research"
	"github.com/FACorreiaa/go-itinerary-engine/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	GenerateItinerary(w http.ResponseWriter, r *http.Request)
	GenerateItineraryStream(w http.ResponseWriter, r *http.Request)
	SaveItinerary(w http.ResponseWriter, r *http.Request)
	GetItinerary(w http.ResponseWriter, r *http.Request)
	ListItineraries(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	itineraryService Service
	logger           *slog.Logger
}

func NewHandlerImpl(itineraryService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		itineraryService: itineraryService,
		logger:           logger,
	}
}

// GenerateItinerary godoc
// @Summary      Generate itinerary
// @Description  Plans a multi-day itinerary from a list of places. Set research to true to look places up first.
// @Tags         Itinerary
// @Accept       json
// @Produce      json
// @Param        request body types.GenerateItineraryRequest true "Places, dates and budget"
// @Success      200 {object} types.GeneratedItinerary "Generated itinerary"
// @Failure      400 {object} types.Response "Invalid Input"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Router       /itineraries/generate [post]
func (h *HandlerImpl) GenerateItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "GenerateItinerary", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/itineraries/generate"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GenerateItinerary"))

	req, ok := h.decodeRequest(w, r, l)
	if !ok {
		span.SetStatus(codes.Error, "Invalid request")
		return
	}

	itinerary, err := h.generate(r.WithContext(ctx), req)
	if err != nil {
		l.ErrorContext(ctx, "Failed to generate itinerary", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Generation failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to generate itinerary")
		return
	}

	span.SetStatus(codes.Ok, "Itinerary generated")
	api.WriteJSONResponse(w, r, http.StatusOK, itinerary)
}

// GenerateItineraryStream godoc
// @Summary      Generate itinerary with research (stream)
// @Description  Researches every place and streams progress as server-sent events. Emits "progress" events, then one "itinerary" event, or an "error" event.
// @Tags         Itinerary
// @Accept       json
// @Produce      text/event-stream
// @Param        request body types.GenerateItineraryRequest true "Places, dates and budget"
// @Success      200 {object} types.ResearchProgress "Progress events followed by the itinerary"
// @Failure      400 {object} types.Response "Invalid Input"
// @Router       /itineraries/generate/research [post]
func (h *HandlerImpl) GenerateItineraryStream(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "GenerateItineraryStream", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/itineraries/generate/research"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GenerateItineraryStream"))

	req, ok := h.decodeRequest(w, r, l)
	if !ok {
		span.SetStatus(codes.Error, "Invalid request")
		return
	}

	api.SetSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	opts := research.Options{
		UseCache: req.UseCache == nil || *req.UseCache,
		OnProgress: func(p types.ResearchProgress) {
			if err := api.WriteSSEEvent(w, "progress", p); err != nil {
				l.WarnContext(ctx, "Failed to write progress event", slog.Any("error", err))
			}
		},
	}
	itinerary, err := h.itineraryService.GenerateItineraryWithResearch(ctx, req.ItineraryInput, opts)
	if err != nil {
		l.ErrorContext(ctx, "Failed to generate researched itinerary", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Generation failed")
		if err := api.WriteSSEEvent(w, "error", types.Response{Success: false, Error: "Failed to generate itinerary"}); err != nil {
			l.WarnContext(ctx, "Failed to write error event", slog.Any("error", err))
		}
		return
	}

	if err := api.WriteSSEEvent(w, "itinerary", itinerary); err != nil {
		l.WarnContext(ctx, "Failed to write itinerary event", slog.Any("error", err))
		span.RecordError(err)
		return
	}
	span.SetStatus(codes.Ok, "Itinerary streamed")
}

// SaveItinerary godoc
// @Summary      Generate and save itinerary
// @Description  Generates an itinerary and stores it for the authenticated user.
// @Tags         Itinerary
// @Accept       json
// @Produce      json
// @Param        request body types.GenerateItineraryRequest true "Places, dates and budget"
// @Success      201 {object} types.SavedItinerary "Saved itinerary"
// @Failure      400 {object} types.Response "Invalid Input"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Security     BearerAuth
// @Router       /itineraries [post]
func (h *HandlerImpl) SaveItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "SaveItinerary", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/itineraries"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "SaveItinerary"))

	userID, ok := userFromContext(w, r, l)
	if !ok {
		span.SetStatus(codes.Error, "Unauthorized")
		return
	}
	span.SetAttributes(attribute.String("user.id", userID.String()))

	req, ok := h.decodeRequest(w, r, l)
	if !ok {
		span.SetStatus(codes.Error, "Invalid request")
		return
	}

	itinerary, err := h.generate(r.WithContext(ctx), req)
	if err != nil {
		l.ErrorContext(ctx, "Failed to generate itinerary", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to generate itinerary")
		return
	}

	saved, err := h.itineraryService.SaveItinerary(ctx, userID, req.Title, *itinerary)
	if err != nil {
		l.ErrorContext(ctx, "Failed to save itinerary", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Save failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to save itinerary")
		return
	}

	span.SetStatus(codes.Ok, "Itinerary saved")
	api.WriteJSONResponse(w, r, http.StatusCreated, saved)
}

// GetItinerary godoc
// @Summary      Get saved itinerary
// @Description  Returns one of the authenticated user's saved itineraries.
// @Tags         Itinerary
// @Produce      json
// @Param        itineraryID path string true "Itinerary ID"
// @Success      200 {object} types.SavedItinerary "Saved itinerary"
// @Failure      400 {object} types.Response "Invalid ID"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      404 {object} types.Response "Itinerary Not Found"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Security     BearerAuth
// @Router       /itineraries/{itineraryID} [get]
func (h *HandlerImpl) GetItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "GetItinerary", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/itineraries/{itineraryID}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetItinerary"))

	userID, ok := userFromContext(w, r, l)
	if !ok {
		span.SetStatus(codes.Error, "Unauthorized")
		return
	}

	itineraryID, err := uuid.Parse(chi.URLParam(r, "itineraryID"))
	if err != nil {
		l.WarnContext(ctx, "Invalid itinerary ID", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid itinerary ID format")
		return
	}
	span.SetAttributes(attribute.String("itinerary.id", itineraryID.String()))

	saved, err := h.itineraryService.GetItinerary(ctx, userID, itineraryID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, ErrItineraryNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Itinerary not found")
			return
		}
		l.ErrorContext(ctx, "Failed to load itinerary", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve itinerary")
		return
	}

	span.SetStatus(codes.Ok, "Itinerary retrieved")
	api.WriteJSONResponse(w, r, http.StatusOK, saved)
}

// ListItineraries godoc
// @Summary      List saved itineraries
// @Description  Returns the authenticated user's saved itineraries, newest first.
// @Tags         Itinerary
// @Produce      json
// @Param        limit query int false "Maximum number of itineraries" default(20)
// @Success      200 {array} types.SavedItinerary "Saved itineraries"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Security     BearerAuth
// @Router       /itineraries [get]
func (h *HandlerImpl) ListItineraries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "ListItineraries"))

	userID, ok := userFromContext(w, r, l)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	saved, err := h.itineraryService.ListItineraries(ctx, userID, limit)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list itineraries", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list itineraries")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, saved)
}

func (h *HandlerImpl) decodeRequest(w http.ResponseWriter, r *http.Request, l *slog.Logger) (types.GenerateItineraryRequest, bool) {
	var req types.GenerateItineraryRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(r.Context(), "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return req, false
	}
	if err := ValidateInput(req.ItineraryInput); err != nil {
		l.WarnContext(r.Context(), "Rejected itinerary input", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return req, false
	}
	return req, true
}

func (h *HandlerImpl) generate(r *http.Request, req types.GenerateItineraryRequest) (*types.GeneratedItinerary, error) {
	if !req.Research {
		return h.itineraryService.GenerateItinerary(r.Context(), req.ItineraryInput)
	}
	return h.itineraryService.GenerateItineraryWithResearch(r.Context(), req.ItineraryInput, research.Options{
		UseCache: req.UseCache == nil || *req.UseCache,
	})
}

func userFromContext(w http.ResponseWriter, r *http.Request, l *slog.Logger) (uuid.UUID, bool) {
	userIDStr, ok := appMiddleware.GetUserIDFromContext(r.Context())
	if !ok || userIDStr == "" {
		l.ErrorContext(r.Context(), "User ID not found in context")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		l.ErrorContext(r.Context(), "Invalid user ID format", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID format")
		return uuid.Nil, false
	}
	return userID, true
}
