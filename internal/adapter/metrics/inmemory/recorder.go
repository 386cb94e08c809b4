package inmemory

import "sync"

type Snapshot struct {
	StartTotal        uint64            `json:"start_total"`
	StartRejected     uint64            `json:"start_rejected"`
	Completions       uint64            `json:"completions"`
	Cancellations     uint64            `json:"cancellations"`
	StartsByAction    map[string]uint64 `json:"starts_by_action"`
	RejectionsByCause map[string]uint64 `json:"rejections_by_cause"`
}

type Recorder struct {
	mu          sync.Mutex
	starts      uint64
	rejected    uint64
	completions uint64
	cancels     uint64
	byAction    map[string]uint64
	byCause     map[string]uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		byAction: map[string]uint64{},
		byCause:  map[string]uint64{},
	}
}

func (r *Recorder) RecordStart(actionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts++
	r.byAction[actionID]++
}

func (r *Recorder) RecordStartRejected(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected++
	r.byCause[reason]++
}

func (r *Recorder) RecordCompletion(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completions++
}

func (r *Recorder) RecordCancellation(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancels++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		StartTotal:        r.starts,
		StartRejected:     r.rejected,
		Completions:       r.completions,
		Cancellations:     r.cancels,
		StartsByAction:    make(map[string]uint64, len(r.byAction)),
		RejectionsByCause: make(map[string]uint64, len(r.byCause)),
	}
	for k, v := range r.byAction {
		out.StartsByAction[k] = v
	}
	for k, v := range r.byCause {
		out.RejectionsByCause[k] = v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
