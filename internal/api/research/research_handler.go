package research

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-itinerary-engine/internal/api"
	"github.com/FACorreiaa/go-itinerary-engine/internal/types"
)

const maxResearchPlaces = 50

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	ResearchPlaces(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	researchService Service
	logger          *slog.Logger
}

func NewHandlerImpl(researchService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		researchService: researchService,
		logger:          logger,
	}
}

// ResearchPlaces godoc
// @Summary      Research places
// @Description  Looks up knowledge for each place, serving cached records when allowed. Places whose lookup fails get a low-confidence fallback record and are listed under degraded.
// @Tags         Research
// @Accept       json
// @Produce      json
// @Param        request body types.ResearchPlacesRequest true "Places to research"
// @Success      200 {object} types.ResearchPlacesResponse "Knowledge per place"
// @Failure      400 {object} types.Response "Invalid Input"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Router       /places/research [post]
func (h *HandlerImpl) ResearchPlaces(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ResearchHandler").Start(r.Context(), "ResearchPlaces", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/places/research"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "ResearchPlaces"))

	var req types.ResearchPlacesRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Places) == 0 {
		api.ErrorResponse(w, r, http.StatusBadRequest, "At least one place is required")
		return
	}
	if len(req.Places) > maxResearchPlaces {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Too many places in one request")
		return
	}
	for _, p := range req.Places {
		if p.Name == "" {
			api.ErrorResponse(w, r, http.StatusBadRequest, "Every place needs a name")
			return
		}
	}

	region := req.Region
	if region == "" {
		region = h.researchService.DetectRegion(req.Places)
	}
	useCache := req.UseCache == nil || *req.UseCache
	span.SetAttributes(attribute.String("region", region), attribute.Int("places.count", len(req.Places)))

	results, err := h.researchService.ResearchDetailed(ctx, req.Places, region, Options{UseCache: useCache})
	if err != nil {
		l.ErrorContext(ctx, "Research did not finish", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Research did not finish")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Research did not finish")
		return
	}

	resp := types.ResearchPlacesResponse{
		Region:    region,
		Knowledge: make([]types.PlaceKnowledge, 0, len(results)),
		Degraded:  []string{},
	}
	for _, res := range results {
		resp.Knowledge = append(resp.Knowledge, res.Knowledge)
		if res.Degraded() {
			resp.Degraded = append(resp.Degraded, res.Place.Name)
		}
	}

	span.SetStatus(codes.Ok, "Places researched")
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}
