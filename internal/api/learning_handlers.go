package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/skillquest/internal/domain"
)

type assessmentRequest struct {
	Scores  map[string]any `json:"scores" validate:"required"`
	Signals map[string]any `json:"signals"`
}

type evaluateRequest struct {
	AssessmentID string `json:"assessmentId" validate:"required"`
}

type planRequest struct {
	EvaluationID string `json:"evaluationId" validate:"required"`
}

// decode reads a JSON body into dst and validates it. It writes the error
// response and returns false on failure.
func (r *Router) decode(w http.ResponseWriter, req *http.Request, dst any) bool {
	if err := json.NewDecoder(req.Body).Decode(dst); err != nil {
		BadRequest(w, req, "invalid request body")
		return false
	}
	if err := r.validate.Struct(dst); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			Invalid(w, req, ve[0].Field()+" failed "+ve[0].Tag())
			return false
		}
		Invalid(w, req, err.Error())
		return false
	}
	return true
}

// pathID parses the {id} wildcard. Malformed IDs cannot name a stored
// record, so callers answer them like unknown IDs.
func pathID(req *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(req.PathValue("id"))
	return id, err == nil
}

func (r *Router) handleMeLatest(w http.ResponseWriter, req *http.Request) {
	claims := claimsFrom(req.Context())

	snap, err := r.app.Learning.Latest(req.Context(), claims.UserID)
	if err != nil {
		InternalError(w, req, "failed to load latest results", err)
		return
	}

	out := map[string]any{}
	if snap.Evaluation != nil {
		out["evaluation"] = newEvaluationView(snap.Evaluation, false)
	}
	if snap.Plan != nil {
		out["plan"] = newPlanView(snap.Plan, false)
	}
	WriteJSON(w, http.StatusOK, out)
}

func (r *Router) handleCreateAssessment(w http.ResponseWriter, req *http.Request) {
	var body assessmentRequest
	if !r.decode(w, req, &body) {
		return
	}

	claims := claimsFrom(req.Context())
	a, err := r.app.Learning.CreateAssessment(req.Context(), claims.UserID, body.Scores, body.Signals)
	if errors.Is(err, domain.ErrInvalidInput) {
		Invalid(w, req, err.Error())
		return
	}
	if err != nil {
		InternalError(w, req, "failed to store assessment", err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]string{"assessmentId": a.ID.String()})
}

func (r *Router) handleGetAssessment(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(req)
	if !ok {
		NotFound(w, req, "Not found")
		return
	}

	a, err := r.app.Learning.GetAssessment(req.Context(), claimsFrom(req.Context()).UserID, id)
	if errors.Is(err, domain.ErrAssessmentNotFound) {
		NotFound(w, req, "Not found")
		return
	}
	if err != nil {
		InternalError(w, req, "failed to load assessment", err)
		return
	}

	WriteJSON(w, http.StatusOK, newAssessmentView(a))
}

func (r *Router) handleEvaluate(w http.ResponseWriter, req *http.Request) {
	var body evaluateRequest
	if !r.decode(w, req, &body) {
		return
	}

	assessmentID, err := uuid.Parse(body.AssessmentID)
	if err != nil {
		NotFound(w, req, "Assessment not found")
		return
	}

	e, err := r.app.Learning.Evaluate(req.Context(), claimsFrom(req.Context()).UserID, assessmentID)
	if errors.Is(err, domain.ErrAssessmentNotFound) {
		NotFound(w, req, "Assessment not found")
		return
	}
	if err != nil {
		InternalError(w, req, "evaluation failed", err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{
		"evaluationId": e.ID.String(),
		"domainScores": e.DomainScores,
	})
}

func (r *Router) handleGetEvaluation(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(req)
	if !ok {
		NotFound(w, req, "Not found")
		return
	}

	e, err := r.app.Learning.GetEvaluation(req.Context(), claimsFrom(req.Context()).UserID, id)
	if errors.Is(err, domain.ErrEvaluationNotFound) {
		NotFound(w, req, "Not found")
		return
	}
	if err != nil {
		InternalError(w, req, "failed to load evaluation", err)
		return
	}

	WriteJSON(w, http.StatusOK, newEvaluationView(e, true))
}

func (r *Router) handleLatestEvaluation(w http.ResponseWriter, req *http.Request) {
	e, err := r.app.Learning.LatestEvaluation(req.Context(), claimsFrom(req.Context()).UserID)
	if errors.Is(err, domain.ErrEvaluationNotFound) {
		NotFound(w, req, "No evaluations found")
		return
	}
	if err != nil {
		InternalError(w, req, "failed to load evaluation", err)
		return
	}

	WriteJSON(w, http.StatusOK, newEvaluationView(e, true))
}

func (r *Router) handleCreatePlan(w http.ResponseWriter, req *http.Request) {
	var body planRequest
	if !r.decode(w, req, &body) {
		return
	}

	evaluationID, err := uuid.Parse(body.EvaluationID)
	if err != nil {
		NotFound(w, req, "Evaluation not found")
		return
	}

	p, err := r.app.Learning.CreatePlan(req.Context(), claimsFrom(req.Context()).UserID, evaluationID)
	if errors.Is(err, domain.ErrEvaluationNotFound) {
		NotFound(w, req, "Evaluation not found")
		return
	}
	if err != nil {
		InternalError(w, req, "failed to build plan", err)
		return
	}

	v := newPlanView(p, false)
	WriteJSON(w, http.StatusCreated, map[string]any{
		"planId": v.ID,
		"items":  v.Items,
		"advice": v.Advice,
	})
}

func (r *Router) handleGetPlan(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(req)
	if !ok {
		NotFound(w, req, "Not found")
		return
	}

	p, err := r.app.Learning.GetPlan(req.Context(), claimsFrom(req.Context()).UserID, id)
	if errors.Is(err, domain.ErrPlanNotFound) {
		NotFound(w, req, "Not found")
		return
	}
	if err != nil {
		InternalError(w, req, "failed to load plan", err)
		return
	}

	WriteJSON(w, http.StatusOK, newPlanView(p, true))
}

func (r *Router) handleLatestPlan(w http.ResponseWriter, req *http.Request) {
	p, err := r.app.Learning.LatestPlan(req.Context(), claimsFrom(req.Context()).UserID)
	if errors.Is(err, domain.ErrPlanNotFound) {
		NotFound(w, req, "No plans found")
		return
	}
	if err != nil {
		InternalError(w, req, "failed to load plan", err)
		return
	}

	WriteJSON(w, http.StatusOK, newPlanView(p, true))
}

func (r *Router) handleStartPlan(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(req)
	if !ok {
		NotFound(w, req, "Not found")
		return
	}

	p, err := r.app.Learning.StartPlan(req.Context(), claimsFrom(req.Context()).UserID, id)
	if errors.Is(err, domain.ErrPlanNotFound) {
		NotFound(w, req, "Not found")
		return
	}
	if err != nil {
		InternalError(w, req, "failed to start plan", err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"startedAt": p.StartedAt,
	})
}
