package analytics

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Phase tags an Outcome.
type Phase int

const (
	// Loading means a fetch is in flight; the view is empty.
	Loading Phase = iota
	// Loaded carries a ViewModel; SummaryPresent tells "no data yet" apart.
	Loaded
	// Failed carries a human-readable Message and the empty view.
	Failed
)

func (p Phase) String() string {
	switch p {
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "loading"
	}
}

// Outcome is the tagged result of loading analytics.
type Outcome struct {
	Phase          Phase
	View           ViewModel
	SummaryPresent bool
	Message        string
}

// LoadingOutcome is the in-flight state.
func LoadingOutcome() Outcome {
	return Outcome{Phase: Loading, View: EmptyViewModel()}
}

// LoadedOutcome wraps a derived view.
func LoadedOutcome(vm ViewModel) Outcome {
	return Outcome{Phase: Loaded, View: vm, SummaryPresent: vm.SummaryStats != nil}
}

// FailedOutcome carries msg and resets the view to its empty default.
func FailedOutcome(msg string) Outcome {
	return Outcome{Phase: Failed, View: EmptyViewModel(), Message: msg}
}

// Derive converts one fetch result into an Outcome. It never panics and
// treats any error that is not *MalformedError as a transport failure.
func Derive(env *Envelope, fetchErr error) Outcome {
	if fetchErr != nil {
		return FailedOutcome(FailureMessage(fetchErr))
	}
	p, err := Unwrap(env)
	if err != nil {
		return FailedOutcome(FailureMessage(err))
	}
	return LoadedOutcome(Normalize(p))
}

// FailureMessage renders a failure deterministically:
//   - malformed: the server message, else FallbackMessage
//   - transport: "Could not load data from API: <cause>. Please try again later."
func FailureMessage(err error) string {
	var me *MalformedError
	if errors.As(err, &me) {
		if me.Message != "" {
			return me.Message
		}
		return FallbackMessage
	}

	cause := UnknownError
	var te *TransportError
	if errors.As(err, &te) {
		cause = te.Cause()
	} else if err != nil && err.Error() != "" {
		cause = err.Error()
	}
	return fmt.Sprintf("Could not load data from API: %s. Please try again later.", cause)
}

type outcomeJSON struct {
	State          string    `json:"state"`
	SummaryPresent bool      `json:"summary_present"`
	Message        string    `json:"message,omitempty"`
	View           ViewModel `json:"view"`
}

// MarshalJSON renders the phase as a lowercase "state" string.
func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(outcomeJSON{
		State:          o.Phase.String(),
		SummaryPresent: o.SummaryPresent,
		Message:        o.Message,
		View:           o.View,
	})
}
