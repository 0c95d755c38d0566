package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/milops/asset-console/backend"
)

// DashboardData feeds the dashboard content template.
type DashboardData struct {
	Metrics    backend.DashboardMetrics
	Filter     backend.Filter
	Bases      []backend.Base
	AssetTypes []backend.AssetType
	Bars       []MovementBar
}

// MovementBar is one row of the movement chart. Pct is the bar width
// relative to the largest amount in the set.
type MovementBar struct {
	Label  string
	Amount float64
	Pct    int
}

func movementBars(m backend.DashboardMetrics) []MovementBar {
	bars := []MovementBar{
		{Label: "Purchases", Amount: m.Purchases},
		{Label: "Transfers In", Amount: m.TransfersIn},
		{Label: "Transfers Out", Amount: m.TransfersOut},
		{Label: "Assigned", Amount: m.Assigned},
		{Label: "Expended", Amount: m.Expended},
	}

	var max float64
	for _, b := range bars {
		if b.Amount > max {
			max = b.Amount
		}
	}
	if max == 0 {
		return bars
	}
	for i := range bars {
		bars[i].Pct = int(bars[i].Amount / max * 100)
	}
	return bars
}

// DashboardHandler renders the movement metrics for the selected
// period. Metrics and the filter dropdown sources are fetched
// concurrently; the breakdown figures come straight from the backend's
// aggregation, purchases and the two transfer directions are separate
// fields there.
func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := filterFromQuery(r)

		var data DashboardData
		data.Filter = filter

		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			var err error
			data.Metrics, err = s.backend.DashboardMetrics(ctx, filter)
			return err
		})
		g.Go(func() error {
			var err error
			data.Bases, err = s.backend.Bases(ctx)
			return err
		})
		g.Go(func() error {
			var err error
			data.AssetTypes, err = s.backend.AssetTypes(ctx)
			return err
		})
		if err := g.Wait(); err != nil {
			log.Err(err).Msg("dashboard fetch failed")
			renderFetchFailure(w, r, err)
			return
		}
		data.Bars = movementBars(data.Metrics)

		s.renderPage(w, r, "dashboard", "Dashboard", "dashboard_content.html", data)
	}
}
