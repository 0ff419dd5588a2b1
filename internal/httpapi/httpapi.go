// Package httpapi is the HTTP front end: three GET endpoints dispatching
// to internal/sequence, routed with gorilla/mux and guarded by
// internal/validation, grounded on original_source/server/http_server.py's
// HttpServer (before-request validation, status/data response envelope)
// and main.py's build_sequence/build_situation_definition/
// build_goals_definition request-merging logic.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/mars-robotics/buildseq/internal/apperr"
	"github.com/mars-robotics/buildseq/internal/config"
	"github.com/mars-robotics/buildseq/internal/model"
	"github.com/mars-robotics/buildseq/internal/sequence"
	"github.com/mars-robotics/buildseq/internal/validation"
)

// targetPaths is the last-path-segment → target-name mapping the three
// endpoints share (spec §6: "the target in the last path segment is
// concatenated with goalsDefinition.definitionType").
var targetPaths = map[string]string{
	"/sequence/approach": "approach",
	"/sequence/station":  "station",
	"/sequence/work":     "work",
}

// Request is the inbound request body shape (spec §6).
type Request struct {
	InitialSituation *InitialSituation `json:"initialSituation"`
	GoalsDefinition  *GoalsDefinition  `json:"goalsDefinition"`
}

// InitialSituation carries the overlay values for the two situation halves.
type InitialSituation struct {
	WorkSituation  map[string]string `json:"workSituation"`
	RobotSituation map[string]string `json:"robotSituation"`
}

// GoalsDefinition selects a sequence kind and overlays its area descriptor.
type GoalsDefinition struct {
	DefinitionType string            `json:"definitionType"`
	Definition     map[string]string `json:"definition"`
}

// successBody is the spec §6 success envelope.
type successBody struct {
	BuildProcess []sequence.Row `json:"buildProcess"`
}

// failureBody is the spec §6 failure envelope.
type failureBody struct {
	Status string      `json:"status"`
	Error  errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string   `json:"kind"`
	Stack   []string `json:"stack"`
	Message string   `json:"message"`
}

// Server wires the sequence unit, default configuration and request
// validator behind gorilla/mux.
type Server struct {
	unit      *sequence.Unit
	defaults  config.DefaultParameters
	validator *validation.Validator
	router    *mux.Router
}

// New builds a Server with all three endpoints registered.
func New(unit *sequence.Unit, defaults config.DefaultParameters, validator *validation.Validator) *Server {
	s := &Server{unit: unit, defaults: defaults, validator: validator, router: mux.NewRouter()}
	for path := range targetPaths {
		s.router.HandleFunc(path, s.handleSequence).Methods(http.MethodGet)
	}
	return s
}

// Handler returns the http.Handler to mount.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleSequence(w http.ResponseWriter, r *http.Request) {
	target, ok := targetPaths[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}

	if err := validation.ValidateURLQuery(r.URL.Query()); err != nil {
		writeError(w, err)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, apperr.New(apperr.KindValidationBody, []string{"httpapi.handleSequence"}, "reading body: %v", err))
		return
	}
	if s.validator != nil {
		if err := s.validator.ValidateBody(r.URL.Path, body); err != nil {
			writeError(w, err)
			return
		}
	}

	var req Request
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, apperr.New(apperr.KindValidationBody, []string{"httpapi.handleSequence"}, "decoding body: %v", err))
			return
		}
	}

	kindKey, area := s.buildGoals(target, req.GoalsDefinition)
	kind, ok := sequence.ParseKind(kindKey)
	if !ok {
		writeError(w, apperr.New(apperr.KindValidationBody, []string{"httpapi.handleSequence"}, "unknown sequence kind %q", kindKey))
		return
	}

	carrierStates, workStates := s.buildSituation(req.InitialSituation)

	plan, err := s.unit.Build(r.Context(), kind, sequence.BuildAreaDef(area), carrierStates, workStates)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, sequence.Serialize(plan))
}

// buildGoals resolves (sequence-type key, area descriptor) from the
// request, overlaying the configured default (spec §6: missing
// goalsDefinition means "use the configured default type and its default
// definition"; the sequence-type key is "<target>_<definitionType>", e.g.
// "work_area").
func (s *Server) buildGoals(target string, requested *GoalsDefinition) (string, map[string]string) {
	definitionType := s.defaults.Goals.DefaultType
	if requested != nil && requested.DefinitionType != "" {
		definitionType = requested.DefinitionType
	}
	kindKey := target + "_" + definitionType

	merged := copyDefinition(s.defaultDefinition(kindKey))
	if requested != nil {
		for k, v := range requested.Definition {
			merged[k] = v
		}
	}
	return kindKey, merged
}

func (s *Server) defaultDefinition(kindKey string) map[string]string {
	switch kindKey {
	case "work_area":
		return s.defaults.Goals.WorkArea
	case "station_area":
		return s.defaults.Goals.StationArea
	case "approach_area":
		return s.defaults.Goals.ApproachArea
	default:
		return nil
	}
}

func copyDefinition(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// buildSituation overlays the request's workSituation/robotSituation maps
// onto the configured defaults, forcing relation=eq on every overlaid
// entry (spec §6) and carrying the default relation/priority for entries
// left untouched.
func (s *Server) buildSituation(requested *InitialSituation) (carrierStates, workStates []model.StateObject) {
	workStates = mergeSituation(s.defaults.Situations.WorkSituation, valuesOrNil(requested, func(i *InitialSituation) map[string]string { return i.WorkSituation }))
	carrierStates = mergeSituation(s.defaults.Situations.RobotSituation, valuesOrNil(requested, func(i *InitialSituation) map[string]string { return i.RobotSituation }))
	return carrierStates, workStates
}

func valuesOrNil(requested *InitialSituation, get func(*InitialSituation) map[string]string) map[string]string {
	if requested == nil {
		return nil
	}
	return get(requested)
}

func mergeSituation(defaults map[string]config.StateEntry, overlay map[string]string) []model.StateObject {
	out := make([]model.StateObject, 0, len(defaults))
	for uid, entry := range defaults {
		relation := model.Relation(entry.Relation)
		state := entry.State
		if v, ok := overlay[uid]; ok {
			state = v
			relation = model.RelationEq
		}
		so := model.NewStateObject(uid, relation, state)
		so.Priority = entry.Priority
		out = append(out, so)
	}
	return out
}

func writeSuccess(w http.ResponseWriter, rows []sequence.Row) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(successBody{BuildProcess: rows}); err != nil {
		log.Error().Err(err).Msg("encoding success response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	var appErr *apperr.Error
	status := http.StatusInternalServerError
	detail := errorDetail{Kind: "internal", Message: err.Error()}
	if errors.As(err, &appErr) {
		status = apperr.HTTPStatus(appErr.Kind)
		detail = errorDetail{Kind: string(appErr.Kind), Stack: appErr.Stack, Message: appErr.Message}
	}
	log.Error().Str("kind", detail.Kind).Strs("stack", detail.Stack).Msg(detail.Message)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(failureBody{Status: "FAIL", Error: detail}); err != nil {
		log.Error().Err(err).Msg("encoding failure response")
	}
}

// Shutdown is a thin pass-through kept for symmetry with the AMQP adapter's
// lifecycle; gorilla/mux has no state of its own to release.
func Shutdown(ctx context.Context) error {
	return ctx.Err()
}
