package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/stablevault/solana-vault-api/system"
)

// System is a HTTP server for operator settings.
type System struct {
	service *system.Service
}

func NewSystem(service *system.Service) *System {
	return &System{service}
}

func (s *System) GetSettings() http.Handler {
	return http.HandlerFunc(s.GetSettingsFunc)
}

func (s *System) SetSettings() http.Handler {
	h := http.HandlerFunc(s.SetSettingsFunc)
	return UseJson(h)
}

func (s *System) GetSettingsFunc(rw http.ResponseWriter, r *http.Request) {
	settings, err := s.service.GetSettings()
	if err != nil {
		handleError(rw, r, err)
		return
	}

	handleJsonResponse(rw, http.StatusOK, settings.ToJSON())
}

func (s *System) SetSettingsFunc(rw http.ResponseWriter, r *http.Request) {
	if err := checkNonEmptyBody(r); err != nil {
		handleError(rw, r, err)
		return
	}

	settings, err := s.service.GetSettings()
	if err != nil {
		handleError(rw, r, err)
		return
	}

	// Overlay the request on the current settings so omitted fields keep
	// their stored values.
	j := settings.ToJSON()
	if err := json.NewDecoder(r.Body).Decode(&j); err != nil {
		handleError(rw, r, InvalidBodyError)
		return
	}
	settings.FromJSON(j)

	if err := s.service.SaveSettings(settings); err != nil {
		handleError(rw, r, err)
		return
	}

	handleJsonResponse(rw, http.StatusOK, settings.ToJSON())
}
