package handlers

import (
	"errors"
	"net/http"

	"chatterAPI/middleware"
	"chatterAPI/services"
)

type WeatherHandler struct {
	weatherService *services.WeatherService
}

func NewWeatherHandler(weatherService *services.WeatherService) *WeatherHandler {
	return &WeatherHandler{weatherService: weatherService}
}

// GetByLocation handles GET /weather/location. The coordinates arrive in
// the "lat" and "long" headers, matching the mobile client.
func (h *WeatherHandler) GetByLocation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := handlerContext(r)
	defer cancel()

	if _, ok := middleware.GetMemberID(ctx); !ok {
		respondWithError(w, http.StatusUnauthorized, msgUnauthenticated)
		return
	}

	lat := r.Header.Get("lat")
	long := r.Header.Get("long")
	if lat == "" || long == "" {
		respondWithError(w, http.StatusBadRequest, msgMissingInfo)
		return
	}

	report, err := h.weatherService.Forecast(ctx, lat, long)
	if err != nil {
		if errors.Is(err, services.ErrLocationNotFound) {
			respondWithError(w, http.StatusBadRequest, "Location not found")
			return
		}
		respondInternalError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, report)
}
