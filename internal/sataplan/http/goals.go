package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/sataplan/internal/sataplan/service"
	"github.com/aussiebroadwan/sataplan/pkg/httpx"
	"github.com/aussiebroadwan/sataplan/pkg/sdk"
	"github.com/aussiebroadwan/sataplan/pkg/slogx"
)

var (
	errInvalidGoalID       = sdk.NewAPIError(http.StatusBadRequest, sdk.ErrorCodeInvalidRequest, "invalid goal id")
	errInvalidMotivationID = sdk.NewAPIError(http.StatusBadRequest, sdk.ErrorCodeInvalidRequest, "invalid motivation id")
)

// GoalsHandler handles the signed in user's own goals.
type GoalsHandler struct {
	GoalService *service.GoalService
}

// HandleCreate handles POST /v1/goals
//
//	@Summary		Create Goal
//	@Description	Creates a goal owned by the caller.
//	@Tags			Goals
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			Authorization	header		string						true	"Bearer access token"
//	@Param			request			body		sdk.CreateGoalRequest		true	"name, description"
//	@Success		201				{object}	sdk.GoalResponse			"the new goal"
//	@Failure		400				{object}	sdk.ValidationErrorResponse	"code, message, details"
//	@Failure		401				{object}	sdk.ErrorResponse			"error, error_description"
//	@Failure		500				{object}	sdk.ErrorResponse			"error, error_description"
//	@Router			/v1/goals [post].
func (h *GoalsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := httpx.PrincipalID(r.Context())

	var req sdk.CreateGoalRequest
	if err := httpx.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		sdk.ErrInvalidJSONBody.WriteError(w)
		return
	}

	goal, err := h.GoalService.CreateGoal(r.Context(), userID, req.Name, req.Description)
	if err != nil {
		writeServiceError(w, r, err, "create goal")
		return
	}

	slogx.FromContext(r.Context()).Info("goal created", "goal_id", goal.ID)
	httpx.WriteJSON(w, http.StatusCreated, toGoalResponse(goal))
}

// HandleList handles GET /v1/goals
//
//	@Summary		List Goals
//	@Description	Returns the caller's goals, oldest first, with their motivations.
//	@Tags			Goals
//	@Produce		json
//	@Security		BearerAuth
//	@Param			Authorization	header		string				true	"Bearer access token"
//	@Success		200				{array}		sdk.GoalResponse	"goals"
//	@Failure		401				{object}	sdk.ErrorResponse	"error, error_description"
//	@Failure		500				{object}	sdk.ErrorResponse	"error, error_description"
//	@Router			/v1/goals [get].
func (h *GoalsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := httpx.PrincipalID(r.Context())

	goals, err := h.GoalService.ListGoals(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, "list goals")
		return
	}

	out := make([]sdk.GoalResponse, len(goals))
	for i, g := range goals {
		out[i] = toGoalResponse(g)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet handles GET /v1/goals/{id}
//
//	@Summary		Get Goal
//	@Tags			Goals
//	@Produce		json
//	@Security		BearerAuth
//	@Param			Authorization	header		string				true	"Bearer access token"
//	@Param			id				path		int					true	"Goal ID"
//	@Success		200				{object}	sdk.GoalResponse	"goal"
//	@Failure		400				{object}	sdk.ErrorResponse	"error, error_description"
//	@Failure		401				{object}	sdk.ErrorResponse	"error, error_description"
//	@Failure		403				{object}	sdk.ErrorResponse	"error, error_description"
//	@Failure		404				{object}	sdk.ErrorResponse	"error, error_description"
//	@Router			/v1/goals/{id} [get].
func (h *GoalsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, _ := httpx.PrincipalID(r.Context())
	id, ok := pathID(r)
	if !ok {
		errInvalidGoalID.WriteError(w)
		return
	}

	goal, err := h.GoalService.GetGoal(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, r, err, "get goal")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toGoalResponse(goal))
}

// HandleSearch handles GET /v1/goals/search
//
//	@Summary		Search Goals
//	@Description	Pages through the caller's goals whose name or description contains q (case-insensitive).
//	@Tags			Goals
//	@Produce		json
//	@Security		BearerAuth
//	@Param			Authorization	header		string						true	"Bearer access token"
//	@Param			q				query		string						false	"search text"
//	@Param			page			query		int							false	"page, from 1"		default(1)
//	@Param			page_size		query		int							false	"results per page"	default(3)	maximum(50)
//	@Success		200				{object}	sdk.GoalSearchResponse		"goals, page, page_size, total"
//	@Failure		400				{object}	sdk.ValidationErrorResponse	"code, message, details"
//	@Failure		401				{object}	sdk.ErrorResponse			"error, error_description"
//	@Router			/v1/goals/search [get].
func (h *GoalsHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	userID, _ := httpx.PrincipalID(r.Context())
	query := r.URL.Query()

	page, err := intParam(query.Get("page"), 1)
	if err != nil {
		writeServiceError(w, r, &service.ValidationError{Field: "page", Message: "must be an integer"}, "search goals")
		return
	}
	pageSize, err := intParam(query.Get("page_size"), 0)
	if err != nil {
		writeServiceError(w, r, &service.ValidationError{Field: "page_size", Message: "must be an integer"}, "search goals")
		return
	}

	res, err := h.GoalService.SearchGoals(r.Context(), userID, query.Get("q"), page, pageSize)
	if err != nil {
		writeServiceError(w, r, err, "search goals")
		return
	}

	out := sdk.GoalSearchResponse{
		Goals:    make([]sdk.GoalResponse, len(res.Goals)),
		Page:     res.Page,
		PageSize: res.PageSize,
		Total:    res.Total,
	}
	for i, g := range res.Goals {
		out.Goals[i] = toGoalResponse(g)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

// HandleUpdate handles PATCH /v1/goals/{id}
//
//	@Summary		Update Goal
//	@Description	Replaces the name and description of a goal the caller owns.
//	@Tags			Goals
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			Authorization	header		string						true	"Bearer access token"
//	@Param			id				path		int							true	"Goal ID"
//	@Param			request			body		sdk.UpdateGoalRequest		true	"name, description"
//	@Success		200				{object}	sdk.GoalResponse			"the updated goal"
//	@Failure		400				{object}	sdk.ValidationErrorResponse	"code, message, details"
//	@Failure		401				{object}	sdk.ErrorResponse			"error, error_description"
//	@Failure		403				{object}	sdk.ErrorResponse			"error, error_description"
//	@Failure		404				{object}	sdk.ErrorResponse			"error, error_description"
//	@Router			/v1/goals/{id} [patch].
func (h *GoalsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := httpx.PrincipalID(r.Context())
	id, ok := pathID(r)
	if !ok {
		errInvalidGoalID.WriteError(w)
		return
	}

	var req sdk.UpdateGoalRequest
	if err := httpx.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		sdk.ErrInvalidJSONBody.WriteError(w)
		return
	}

	goal, err := h.GoalService.UpdateGoal(r.Context(), userID, id, req.Name, req.Description)
	if err != nil {
		writeServiceError(w, r, err, "update goal")
		return
	}

	slogx.FromContext(r.Context()).Info("goal updated", "goal_id", goal.ID)
	httpx.WriteJSON(w, http.StatusOK, toGoalResponse(goal))
}

// HandleDelete handles DELETE /v1/goals/{id}
//
//	@Summary		Delete Goal
//	@Description	Deletes a goal with its motivations and revokes its share password.
//	@Tags			Goals
//	@Security		BearerAuth
//	@Param			Authorization	header	string	true	"Bearer access token"
//	@Param			id				path	int		true	"Goal ID"
//	@Success		204				"Goal deleted"
//	@Failure		400				{object}	sdk.ErrorResponse	"error, error_description"
//	@Failure		401				{object}	sdk.ErrorResponse	"error, error_description"
//	@Failure		403				{object}	sdk.ErrorResponse	"error, error_description"
//	@Failure		404				{object}	sdk.ErrorResponse	"error, error_description"
//	@Router			/v1/goals/{id} [delete].
func (h *GoalsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := httpx.PrincipalID(r.Context())
	id, ok := pathID(r)
	if !ok {
		errInvalidGoalID.WriteError(w)
		return
	}

	if err := h.GoalService.DeleteGoal(r.Context(), userID, id); err != nil {
		writeServiceError(w, r, err, "delete goal")
		return
	}

	slogx.FromContext(r.Context()).Info("goal deleted", "goal_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// HandleAddMotivation handles POST /v1/goals/{id}/motivations
//
//	@Summary		Add Motivation
//	@Description	Attaches a quote and/or link to a goal. Links must be absolute http(s) URLs.
//	@Tags			Goals
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			Authorization	header		string						true	"Bearer access token"
//	@Param			id				path		int							true	"Goal ID"
//	@Param			request			body		sdk.AddMotivationRequest	true	"quote, link"
//	@Success		201				{object}	sdk.MotivationResponse		"the new motivation"
//	@Failure		400				{object}	sdk.ValidationErrorResponse	"code, message, details"
//	@Failure		401				{object}	sdk.ErrorResponse			"error, error_description"
//	@Failure		403				{object}	sdk.ErrorResponse			"error, error_description"
//	@Failure		404				{object}	sdk.ErrorResponse			"error, error_description"
//	@Router			/v1/goals/{id}/motivations [post].
func (h *GoalsHandler) HandleAddMotivation(w http.ResponseWriter, r *http.Request) {
	userID, _ := httpx.PrincipalID(r.Context())
	id, ok := pathID(r)
	if !ok {
		errInvalidGoalID.WriteError(w)
		return
	}

	var req sdk.AddMotivationRequest
	if err := httpx.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		sdk.ErrInvalidJSONBody.WriteError(w)
		return
	}

	m, err := h.GoalService.AddMotivation(r.Context(), userID, id, req.Quote, req.Link)
	if err != nil {
		writeServiceError(w, r, err, "add motivation")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toMotivationResponse(m))
}

// HandleListMotivations handles GET /v1/goals/{id}/motivations
//
//	@Summary		List Motivations
//	@Tags			Goals
//	@Produce		json
//	@Security		BearerAuth
//	@Param			Authorization	header		string						true	"Bearer access token"
//	@Param			id				path		int							true	"Goal ID"
//	@Success		200				{object}	sdk.MotivationListResponse	"data"
//	@Failure		400				{object}	sdk.ErrorResponse			"error, error_description"
//	@Failure		401				{object}	sdk.ErrorResponse			"error, error_description"
//	@Failure		403				{object}	sdk.ErrorResponse			"error, error_description"
//	@Failure		404				{object}	sdk.ErrorResponse			"error, error_description"
//	@Router			/v1/goals/{id}/motivations [get].
func (h *GoalsHandler) HandleListMotivations(w http.ResponseWriter, r *http.Request) {
	userID, _ := httpx.PrincipalID(r.Context())
	id, ok := pathID(r)
	if !ok {
		errInvalidGoalID.WriteError(w)
		return
	}

	ms, err := h.GoalService.ListMotivations(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, r, err, "list motivations")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sdk.MotivationListResponse{Data: toMotivationResponses(ms)})
}

// HandleDeleteMotivation handles DELETE /v1/motivations/{id}
//
//	@Summary		Delete Motivation
//	@Description	Removes a motivation from a goal the caller owns.
//	@Tags			Goals
//	@Security		BearerAuth
//	@Param			Authorization	header	string	true	"Bearer access token"
//	@Param			id				path	int		true	"Motivation ID"
//	@Success		204				"Motivation deleted"
//	@Failure		400				{object}	sdk.ErrorResponse	"error, error_description"
//	@Failure		401				{object}	sdk.ErrorResponse	"error, error_description"
//	@Failure		403				{object}	sdk.ErrorResponse	"error, error_description"
//	@Failure		404				{object}	sdk.ErrorResponse	"error, error_description"
//	@Router			/v1/motivations/{id} [delete].
func (h *GoalsHandler) HandleDeleteMotivation(w http.ResponseWriter, r *http.Request) {
	userID, _ := httpx.PrincipalID(r.Context())
	id, ok := pathID(r)
	if !ok {
		errInvalidMotivationID.WriteError(w)
		return
	}

	if err := h.GoalService.DeleteMotivation(r.Context(), userID, id); err != nil {
		writeServiceError(w, r, err, "delete motivation")
		return
	}

	slogx.FromContext(r.Context()).Info("motivation deleted", "motivation_id", id)
	w.WriteHeader(http.StatusNoContent)
}
