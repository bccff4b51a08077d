package server

import (
	"net/http"

	"deals_bot/pkg/httpx/reply"
	"deals_bot/pkg/httpx/req"
	"deals_bot/pkg/rest"
)

type discountSettings interface {
	MinDiscountPercent() float64
	SetDiscountThreshold(percent float64)
}

type SettingsServer struct {
	settings discountSettings
}

func NewSettingsServer(settings discountSettings) SettingsServer {
	return SettingsServer{
		settings: settings,
	}
}

func (s SettingsServer) getV1SettingsDiscount(w http.ResponseWriter, r *http.Request) error {
	reply.JSON(r.Context(), w, http.StatusOK, rest.DiscountSettings{
		MinDiscountPercent: s.settings.MinDiscountPercent(),
	})

	return nil
}

func (s SettingsServer) putV1SettingsDiscount(w http.ResponseWriter, r *http.Request) error {
	var body rest.DiscountSettings
	if err := req.Read(r, &body); err != nil {
		return err
	}

	s.settings.SetDiscountThreshold(body.MinDiscountPercent)

	reply.JSON(r.Context(), w, http.StatusOK, rest.DiscountSettings{
		MinDiscountPercent: s.settings.MinDiscountPercent(),
	})

	return nil
}
