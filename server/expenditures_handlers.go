package server

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/milops/asset-console/backend"
)

// ExpendituresListData feeds the expenditures list template.
type ExpendituresListData struct {
	Expenditures []backend.Expenditure
	Filter       backend.Filter
	Bases        []backend.Base
	AssetTypes   []backend.AssetType
}

// ExpenditureFormData feeds the expenditure create/edit form.
type ExpenditureFormData struct {
	Form   backend.ExpenditureInput
	EditID int64
	Action string
	Assets []backend.Asset
	Bases  []backend.Base
}

// ExpendituresListHandler lists expenditures for the active filter. The
// list is always re-read from the backend after a mutation, so what the
// page shows is what the backend recorded.
func (s *Server) ExpendituresListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := ExpendituresListData{Filter: filterFromQuery(r)}

		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			var err error
			data.Expenditures, err = s.backend.Expenditures(ctx, data.Filter)
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
			log.Err(err).Msg("expenditures fetch failed")
			renderFetchFailure(w, r, err)
			return
		}

		s.renderPage(w, r, "expenditures", "Expenditures", "expenditures_content.html", data)
	}
}

func (s *Server) ExpenditureNewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := ExpenditureFormData{Action: RouteExpenditures}
		if err := s.loadExpenditureFormSources(r, &data); err != nil {
			renderFetchFailure(w, r, err)
			return
		}
		s.renderPage(w, r, "expenditures", "New Expenditure", "expenditure_form_content.html", data)
	}
}

func (s *Server) ExpenditureCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := parseExpenditureForm(r)
		if err != nil {
			redirectError(w, r, RouteExpenditureNew, err.Error())
			return
		}
		if _, err := s.backend.CreateExpenditure(r.Context(), in); err != nil {
			backendErrorRedirect(w, r, RouteExpenditureNew, err)
			return
		}
		redirectNotice(w, r, RouteExpenditures, "Expenditure recorded")
	}
}

func (s *Server) ExpenditureEditHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			redirectError(w, r, RouteExpenditures, "Unknown expenditure")
			return
		}

		expenditure, err := s.backend.Expenditure(r.Context(), id)
		if err != nil {
			backendErrorRedirect(w, r, RouteExpenditures, err)
			return
		}

		data := ExpenditureFormData{
			EditID: id,
			Action: fmt.Sprintf("/expenditures/%d/edit", id),
			Form: backend.ExpenditureInput{
				AssetID:         expenditure.Asset.ID,
				BaseID:          expenditure.Base.ID,
				Quantity:        expenditure.Quantity,
				Reason:          expenditure.Reason,
				ExpenditureDate: expenditure.ExpenditureDate,
			},
		}
		if err := s.loadExpenditureFormSources(r, &data); err != nil {
			renderFetchFailure(w, r, err)
			return
		}
		s.renderPage(w, r, "expenditures", "Edit Expenditure", "expenditure_form_content.html", data)
	}
}

func (s *Server) ExpenditureUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			redirectError(w, r, RouteExpenditures, "Unknown expenditure")
			return
		}
		in, err := parseExpenditureForm(r)
		if err != nil {
			redirectError(w, r, fmt.Sprintf("/expenditures/%d/edit", id), err.Error())
			return
		}
		if _, err := s.backend.UpdateExpenditure(r.Context(), id, in); err != nil {
			backendErrorRedirect(w, r, fmt.Sprintf("/expenditures/%d/edit", id), err)
			return
		}
		redirectNotice(w, r, RouteExpenditures, "Expenditure updated")
	}
}

func (s *Server) ExpenditureDeleteConfirmHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			redirectError(w, r, RouteExpenditures, "Unknown expenditure")
			return
		}
		expenditure, err := s.backend.Expenditure(r.Context(), id)
		if err != nil {
			backendErrorRedirect(w, r, RouteExpenditures, err)
			return
		}

		data := ConfirmDeleteData{
			Entity:      "expenditure",
			Summary:     fmt.Sprintf("%d x %s at %s", expenditure.Quantity, expenditure.Asset.SerialNumber, expenditure.Base.Name),
			Action:      fmt.Sprintf("/expenditures/%d/delete", id),
			CancelRoute: RouteExpenditures,
		}
		s.renderPage(w, r, "expenditures", "Delete Expenditure", "confirm_delete_content.html", data)
	}
}

func (s *Server) ExpenditureDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			redirectError(w, r, RouteExpenditures, "Unknown expenditure")
			return
		}
		if !deleteConfirmed(r) {
			redirectError(w, r, RouteExpenditures, "Deletion was not confirmed")
			return
		}
		if err := s.backend.DeleteExpenditure(r.Context(), id); err != nil {
			backendErrorRedirect(w, r, RouteExpenditures, err)
			return
		}
		redirectNotice(w, r, RouteExpenditures, "Expenditure deleted")
	}
}

func (s *Server) loadExpenditureFormSources(r *http.Request, data *ExpenditureFormData) error {
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		data.Assets, err = s.backend.Assets(ctx, backend.Filter{})
		return err
	})
	g.Go(func() error {
		var err error
		data.Bases, err = s.backend.Bases(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Err(err).Msg("expenditure form sources fetch failed")
		return err
	}
	return nil
}
