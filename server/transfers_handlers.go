package server

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/milops/asset-console/backend"
)

// TransfersListData feeds the transfers list template.
type TransfersListData struct {
	Transfers  []backend.Transfer
	Filter     backend.Filter
	Bases      []backend.Base
	AssetTypes []backend.AssetType
	CanApprove bool
	Statuses   []backend.TransferStatus
}

// TransferFormData feeds the transfer create/edit form.
type TransferFormData struct {
	Form   backend.TransferInput
	EditID int64
	Action string
	Assets []backend.Asset
	Bases  []backend.Base
}

func (s *Server) TransfersListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		data := TransfersListData{
			Filter:     filterFromQuery(r),
			CanApprove: user != nil && user.CanApproveTransfers(),
			Statuses:   backend.TransferStatuses,
		}

		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			var err error
			data.Transfers, err = s.backend.Transfers(ctx, data.Filter)
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
			log.Err(err).Msg("transfers fetch failed")
			renderFetchFailure(w, r, err)
			return
		}

		s.renderPage(w, r, "transfers", "Transfers", "transfers_content.html", data)
	}
}

func (s *Server) TransferNewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := TransferFormData{Action: RouteTransfers}
		if err := s.loadTransferFormSources(r, &data); err != nil {
			renderFetchFailure(w, r, err)
			return
		}
		s.renderPage(w, r, "transfers", "New Transfer", "transfer_form_content.html", data)
	}
}

func (s *Server) TransferCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := parseTransferForm(r)
		if err != nil {
			redirectError(w, r, RouteTransferNew, err.Error())
			return
		}
		if _, err := s.backend.CreateTransfer(r.Context(), in); err != nil {
			backendErrorRedirect(w, r, RouteTransferNew, err)
			return
		}
		redirectNotice(w, r, RouteTransfers, "Transfer requested")
	}
}

func (s *Server) TransferEditHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			redirectError(w, r, RouteTransfers, "Unknown transfer")
			return
		}

		transfer, err := s.backend.Transfer(r.Context(), id)
		if err != nil {
			backendErrorRedirect(w, r, RouteTransfers, err)
			return
		}

		data := TransferFormData{
			EditID: id,
			Action: fmt.Sprintf("/transfers/%d/edit", id),
			Form: backend.TransferInput{
				AssetID:      transfer.Asset.ID,
				FromBaseID:   transfer.FromBase.ID,
				ToBaseID:     transfer.ToBase.ID,
				TransferDate: transfer.TransferDate,
				Reason:       transfer.Reason,
			},
		}
		if err := s.loadTransferFormSources(r, &data); err != nil {
			renderFetchFailure(w, r, err)
			return
		}
		s.renderPage(w, r, "transfers", "Edit Transfer", "transfer_form_content.html", data)
	}
}

func (s *Server) TransferUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			redirectError(w, r, RouteTransfers, "Unknown transfer")
			return
		}
		in, err := parseTransferForm(r)
		if err != nil {
			redirectError(w, r, fmt.Sprintf("/transfers/%d/edit", id), err.Error())
			return
		}
		if _, err := s.backend.UpdateTransfer(r.Context(), id, in); err != nil {
			backendErrorRedirect(w, r, fmt.Sprintf("/transfers/%d/edit", id), err)
			return
		}
		redirectNotice(w, r, RouteTransfers, "Transfer updated")
	}
}

// TransferApproveHandler approves a pending transfer. Only admins and
// base commanders may approve; the backend enforces the same rule, this
// check just keeps the console honest.
func (s *Server) TransferApproveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			redirectError(w, r, RouteTransfers, "Unknown transfer")
			return
		}
		user := currentUser(r)
		if user == nil || !user.CanApproveTransfers() {
			redirectError(w, r, RouteTransfers, "You are not allowed to approve transfers")
			return
		}
		if _, err := s.backend.ApproveTransfer(r.Context(), id); err != nil {
			backendErrorRedirect(w, r, RouteTransfers, err)
			return
		}
		redirectNotice(w, r, RouteTransfers, "Transfer approved")
	}
}

// TransferRejectHandler rejects a pending transfer. A rejection reason
// is mandatory.
func (s *Server) TransferRejectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			redirectError(w, r, RouteTransfers, "Unknown transfer")
			return
		}
		user := currentUser(r)
		if user == nil || !user.CanApproveTransfers() {
			redirectError(w, r, RouteTransfers, "You are not allowed to reject transfers")
			return
		}
		reason, err := formRequired(r, "reason")
		if err != nil {
			redirectError(w, r, RouteTransfers, "A rejection reason is required")
			return
		}
		if _, err := s.backend.RejectTransfer(r.Context(), id, reason); err != nil {
			backendErrorRedirect(w, r, RouteTransfers, err)
			return
		}
		redirectNotice(w, r, RouteTransfers, "Transfer rejected")
	}
}

func (s *Server) TransferDeleteConfirmHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			redirectError(w, r, RouteTransfers, "Unknown transfer")
			return
		}
		transfer, err := s.backend.Transfer(r.Context(), id)
		if err != nil {
			backendErrorRedirect(w, r, RouteTransfers, err)
			return
		}

		data := ConfirmDeleteData{
			Entity:      "transfer",
			Summary:     fmt.Sprintf("%s from %s to %s", transfer.Asset.SerialNumber, transfer.FromBase.Name, transfer.ToBase.Name),
			Action:      fmt.Sprintf("/transfers/%d/delete", id),
			CancelRoute: RouteTransfers,
		}
		s.renderPage(w, r, "transfers", "Delete Transfer", "confirm_delete_content.html", data)
	}
}

func (s *Server) TransferDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			redirectError(w, r, RouteTransfers, "Unknown transfer")
			return
		}
		if !deleteConfirmed(r) {
			redirectError(w, r, RouteTransfers, "Deletion was not confirmed")
			return
		}
		if err := s.backend.DeleteTransfer(r.Context(), id); err != nil {
			backendErrorRedirect(w, r, RouteTransfers, err)
			return
		}
		redirectNotice(w, r, RouteTransfers, "Transfer deleted")
	}
}

func (s *Server) loadTransferFormSources(r *http.Request, data *TransferFormData) error {
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
		log.Err(err).Msg("transfer form sources fetch failed")
		return err
	}
	return nil
}
