package metrics

import "sessionreplay/internal/app/ports"

// Multi records into every recorder it holds.
type Multi []ports.PlaybackMetrics

func (m Multi) RecordEmitted(mode ports.PlaybackMode) {
	for _, r := range m {
		r.RecordEmitted(mode)
	}
}

func (m Multi) RecordCancelled() {
	for _, r := range m {
		r.RecordCancelled()
	}
}

func (m Multi) RecordCompleted() {
	for _, r := range m {
		r.RecordCompleted()
	}
}

func (m Multi) RecordFetchFailure() {
	for _, r := range m {
		r.RecordFetchFailure()
	}
}
