package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/goliatone/go-memora/pkg/albums"
	"github.com/goliatone/go-memora/pkg/gateway"
	"github.com/goliatone/go-memora/pkg/validation"
)

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

type stepView struct {
	Number      int    `json:"number"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Current     bool   `json:"current"`
	Visited     bool   `json:"visited"`
	Valid       bool   `json:"valid"`
	Error       string `json:"error,omitempty"`
}

type flowView struct {
	ID          string           `json:"id"`
	Kind        string           `json:"kind"`
	CurrentStep int              `json:"currentStep"`
	TotalSteps  int              `json:"totalSteps"`
	Steps       []stepView       `json:"steps"`
	CanProceed  bool             `json:"canProceed"`
	StepError   string           `json:"stepError,omitempty"`
	Submitting  bool             `json:"isSubmitting"`
	SubmitError string           `json:"submitError,omitempty"`
	Completed   bool             `json:"completed"`
	Outcome     *gateway.Outcome `json:"outcome,omitempty"`
	Form        any              `json:"form"`
}

func viewOf(live *Live) flowView {
	view := flowView{
		ID:          live.ID(),
		Kind:        live.Name(),
		CurrentStep: live.Current(),
		TotalSteps:  live.Total(),
		Submitting:  live.Pending(),
		SubmitError: live.SubmitError(),
		Completed:   live.Completed(),
		Form:        live.Snapshot(),
	}
	for _, state := range live.Steps() {
		view.Steps = append(view.Steps, stepView{
			Number:      state.Number,
			Title:       state.Title,
			Description: state.Description,
			Current:     state.Current,
			Visited:     state.Visited,
			Valid:       state.Result.Valid,
			Error:       state.Result.Error,
		})
		if state.Current {
			view.CanProceed = state.Result.Valid
			view.StepError = state.Result.Error
		}
	}
	if outcome, ok := live.Outcome(); ok {
		view.Outcome = &outcome
	}
	return view
}

type gateView struct {
	Flow   flowView          `json:"flow"`
	Result validation.Result `json:"result"`
}

type intakeView struct {
	Flow     flowView       `json:"flow"`
	Rejected []rejectedFile `json:"rejected,omitempty"`
}

type rejectedFile struct {
	FileName string `json:"fileName"`
	Error    string `json:"error"`
}

type albumView struct {
	albums.Album
	StatusLabel string `json:"statusLabel"`
	AutoRefresh bool   `json:"autoRefresh"`
}

func albumViewOf(a albums.Album) albumView {
	return albumView{Album: a, StatusLabel: a.Status.Label(), AutoRefresh: a.Status.Pending()}
}

func writeJSON(w http.ResponseWriter, status int, payload envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Default().Warn("encode response", "error", err)
	}
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Error: message})
}
