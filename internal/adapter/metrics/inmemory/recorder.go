package inmemory

import (
	"sync"

	"sessionreplay/internal/app/ports"
)

type Snapshot struct {
	EmittedTotal  uint64            `json:"emitted_total"`
	EmittedByMode map[string]uint64 `json:"emitted_by_mode"`
	Cancellations uint64            `json:"cancellations"`
	Completions   uint64            `json:"completions"`
	FetchFailures uint64            `json:"fetch_failures"`
}

type Recorder struct {
	mu            sync.Mutex
	byMode        map[string]uint64
	cancellations uint64
	completions   uint64
	fetchFailures uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		byMode: map[string]uint64{},
	}
}

func (r *Recorder) RecordEmitted(mode ports.PlaybackMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byMode[string(mode)]++
}

func (r *Recorder) RecordCancelled() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancellations++
}

func (r *Recorder) RecordCompleted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completions++
}

func (r *Recorder) RecordFetchFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetchFailures++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		Cancellations: r.cancellations,
		Completions:   r.completions,
		FetchFailures: r.fetchFailures,
		EmittedByMode: make(map[string]uint64, len(r.byMode)),
	}
	for k, v := range r.byMode {
		out.EmittedByMode[k] = v
		out.EmittedTotal += v
	}
	return out
}
