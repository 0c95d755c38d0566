package server

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/milops/asset-console/backend"
)

// AssignmentsListData feeds the assignments list template.
type AssignmentsListData struct {
	Assignments []backend.Assignment
	Filter      backend.Filter
	Bases       []backend.Base
	AssetTypes  []backend.AssetType
	Statuses    []backend.AssignmentStatus
}

// AssignmentFormData feeds the assignment create/edit form.
type AssignmentFormData struct {
	Form   backend.AssignmentInput
	EditID int64
	Action string
	Assets []backend.Asset
	Users  []backend.User
}

func (s *Server) AssignmentsListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := AssignmentsListData{
			Filter:   filterFromQuery(r),
			Statuses: backend.AssignmentStatuses,
		}

		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			var err error
			data.Assignments, err = s.backend.Assignments(ctx, data.Filter)
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
			log.Err(err).Msg("assignments fetch failed")
			renderFetchFailure(w, r, err)
			return
		}

		s.renderPage(w, r, "assignments", "Assignments", "assignments_content.html", data)
	}
}

func (s *Server) AssignmentNewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := AssignmentFormData{Action: RouteAssignments}
		if err := s.loadAssignmentFormSources(r, &data); err != nil {
			renderFetchFailure(w, r, err)
			return
		}
		s.renderPage(w, r, "assignments", "New Assignment", "assignment_form_content.html", data)
	}
}

func (s *Server) AssignmentCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := parseAssignmentForm(r)
		if err != nil {
			redirectError(w, r, RouteAssignmentNew, err.Error())
			return
		}
		if _, err := s.backend.CreateAssignment(r.Context(), in); err != nil {
			backendErrorRedirect(w, r, RouteAssignmentNew, err)
			return
		}
		redirectNotice(w, r, RouteAssignments, "Assignment recorded")
	}
}

func (s *Server) AssignmentEditHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			redirectError(w, r, RouteAssignments, "Unknown assignment")
			return
		}

		assignment, err := s.backend.Assignment(r.Context(), id)
		if err != nil {
			backendErrorRedirect(w, r, RouteAssignments, err)
			return
		}

		data := AssignmentFormData{
			EditID: id,
			Action: fmt.Sprintf("/assignments/%d/edit", id),
			Form: backend.AssignmentInput{
				AssetID:        assignment.Asset.ID,
				AssignedToID:   assignment.AssignedTo.ID,
				AssignmentDate: assignment.AssignmentDate,
				Notes:          assignment.Notes,
			},
		}
		if err := s.loadAssignmentFormSources(r, &data); err != nil {
			renderFetchFailure(w, r, err)
			return
		}
		s.renderPage(w, r, "assignments", "Edit Assignment", "assignment_form_content.html", data)
	}
}

func (s *Server) AssignmentUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			redirectError(w, r, RouteAssignments, "Unknown assignment")
			return
		}
		in, err := parseAssignmentForm(r)
		if err != nil {
			redirectError(w, r, fmt.Sprintf("/assignments/%d/edit", id), err.Error())
			return
		}
		if _, err := s.backend.UpdateAssignment(r.Context(), id, in); err != nil {
			backendErrorRedirect(w, r, fmt.Sprintf("/assignments/%d/edit", id), err)
			return
		}
		redirectNotice(w, r, RouteAssignments, "Assignment updated")
	}
}

// AssignmentReturnHandler marks an active assignment's asset as
// returned. The confirmation happens in the browser; the POST is the
// commitment.
func (s *Server) AssignmentReturnHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			redirectError(w, r, RouteAssignments, "Unknown assignment")
			return
		}
		if _, err := s.backend.ReturnAssignment(r.Context(), id); err != nil {
			backendErrorRedirect(w, r, RouteAssignments, err)
			return
		}
		redirectNotice(w, r, RouteAssignments, "Asset returned")
	}
}

func (s *Server) AssignmentDeleteConfirmHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			redirectError(w, r, RouteAssignments, "Unknown assignment")
			return
		}
		assignment, err := s.backend.Assignment(r.Context(), id)
		if err != nil {
			backendErrorRedirect(w, r, RouteAssignments, err)
			return
		}

		data := ConfirmDeleteData{
			Entity:      "assignment",
			Summary:     fmt.Sprintf("%s assigned to %s", assignment.Asset.SerialNumber, assignment.AssignedTo.Username),
			Action:      fmt.Sprintf("/assignments/%d/delete", id),
			CancelRoute: RouteAssignments,
		}
		s.renderPage(w, r, "assignments", "Delete Assignment", "confirm_delete_content.html", data)
	}
}

func (s *Server) AssignmentDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			redirectError(w, r, RouteAssignments, "Unknown assignment")
			return
		}
		if !deleteConfirmed(r) {
			redirectError(w, r, RouteAssignments, "Deletion was not confirmed")
			return
		}
		if err := s.backend.DeleteAssignment(r.Context(), id); err != nil {
			backendErrorRedirect(w, r, RouteAssignments, err)
			return
		}
		redirectNotice(w, r, RouteAssignments, "Assignment deleted")
	}
}

func (s *Server) loadAssignmentFormSources(r *http.Request, data *AssignmentFormData) error {
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		data.Assets, err = s.backend.Assets(ctx, backend.Filter{})
		return err
	})
	g.Go(func() error {
		var err error
		data.Users, err = s.backend.Users(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Err(err).Msg("assignment form sources fetch failed")
		return err
	}
	return nil
}
