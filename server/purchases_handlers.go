package server

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/milops/asset-console/backend"
)

// PurchasesListData feeds the purchases list template.
type PurchasesListData struct {
	Purchases  []backend.Purchase
	Filter     backend.Filter
	Bases      []backend.Base
	AssetTypes []backend.AssetType
}

// PurchaseFormData feeds the purchase create/edit form.
type PurchaseFormData struct {
	Form       PurchaseForm
	EditID     int64
	Action     string
	Bases      []backend.Base
	AssetTypes []backend.AssetType
}

func (s *Server) PurchasesListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := PurchasesListData{Filter: filterFromQuery(r)}

		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			var err error
			data.Purchases, err = s.backend.Purchases(ctx, data.Filter)
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
			log.Err(err).Msg("purchases fetch failed")
			renderFetchFailure(w, r, err)
			return
		}

		s.renderPage(w, r, "purchases", "Purchases", "purchases_content.html", data)
	}
}

func (s *Server) PurchaseNewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := PurchaseFormData{Action: RoutePurchases}
		if err := s.loadPurchaseFormSources(r, &data); err != nil {
			renderFetchFailure(w, r, err)
			return
		}
		s.renderPage(w, r, "purchases", "New Purchase", "purchase_form_content.html", data)
	}
}

func (s *Server) PurchaseCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := parsePurchaseForm(r)
		if err != nil {
			redirectError(w, r, RoutePurchaseNew, err.Error())
			return
		}
		if _, err := s.backend.CreatePurchase(r.Context(), form.PurchaseInput); err != nil {
			backendErrorRedirect(w, r, RoutePurchaseNew, err)
			return
		}
		redirectNotice(w, r, RoutePurchases, "Purchase recorded")
	}
}

func (s *Server) PurchaseEditHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			redirectError(w, r, RoutePurchases, "Unknown purchase")
			return
		}

		purchase, err := s.backend.Purchase(r.Context(), id)
		if err != nil {
			backendErrorRedirect(w, r, RoutePurchases, err)
			return
		}

		data := PurchaseFormData{
			EditID: id,
			Action: fmt.Sprintf("/purchases/%d/edit", id),
			Form: PurchaseForm{PurchaseInput: backend.PurchaseInput{
				AssetTypeID:  purchase.AssetType.ID,
				BaseID:       purchase.Base.ID,
				Quantity:     purchase.Quantity,
				UnitPrice:    purchase.UnitPrice,
				PurchaseDate: purchase.PurchaseDate,
				Supplier:     purchase.Supplier,
				Description:  purchase.Description,
			}},
		}
		if err := s.loadPurchaseFormSources(r, &data); err != nil {
			renderFetchFailure(w, r, err)
			return
		}
		s.renderPage(w, r, "purchases", "Edit Purchase", "purchase_form_content.html", data)
	}
}

func (s *Server) PurchaseUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			redirectError(w, r, RoutePurchases, "Unknown purchase")
			return
		}
		form, err := parsePurchaseForm(r)
		if err != nil {
			redirectError(w, r, fmt.Sprintf("/purchases/%d/edit", id), err.Error())
			return
		}
		if _, err := s.backend.UpdatePurchase(r.Context(), id, form.PurchaseInput); err != nil {
			backendErrorRedirect(w, r, fmt.Sprintf("/purchases/%d/edit", id), err)
			return
		}
		redirectNotice(w, r, RoutePurchases, "Purchase updated")
	}
}

func (s *Server) PurchaseDeleteConfirmHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			redirectError(w, r, RoutePurchases, "Unknown purchase")
			return
		}
		purchase, err := s.backend.Purchase(r.Context(), id)
		if err != nil {
			backendErrorRedirect(w, r, RoutePurchases, err)
			return
		}

		data := ConfirmDeleteData{
			Entity:      "purchase",
			Summary:     fmt.Sprintf("%d %s for %s", purchase.Quantity, purchase.AssetType.Name, purchase.Base.Name),
			Action:      fmt.Sprintf("/purchases/%d/delete", id),
			CancelRoute: RoutePurchases,
		}
		s.renderPage(w, r, "purchases", "Delete Purchase", "confirm_delete_content.html", data)
	}
}

func (s *Server) PurchaseDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			redirectError(w, r, RoutePurchases, "Unknown purchase")
			return
		}
		if !deleteConfirmed(r) {
			redirectError(w, r, RoutePurchases, "Deletion was not confirmed")
			return
		}
		if err := s.backend.DeletePurchase(r.Context(), id); err != nil {
			backendErrorRedirect(w, r, RoutePurchases, err)
			return
		}
		redirectNotice(w, r, RoutePurchases, "Purchase deleted")
	}
}

func (s *Server) loadPurchaseFormSources(r *http.Request, data *PurchaseFormData) error {
	g, ctx := errgroup.WithContext(r.Context())
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
		log.Err(err).Msg("purchase form sources fetch failed")
		return err
	}
	return nil
}
