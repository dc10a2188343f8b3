package telemetry

import "sync"

type EventKind int

const (
	EventBroken EventKind = iota
	EventWarning
	EventInfo
	EventDebug
	EventCount
)

type Event struct {
	Kind   EventKind
	ID     string
	Params []any
	Count  int64
}

// RecordingAPI keeps every report in memory so tests can assert on what a
// component reported.
type RecordingAPI struct {
	mutex  sync.Mutex
	events []Event
}

func NewRecordingAPI() *RecordingAPI {
	return &RecordingAPI{}
}

func (r *RecordingAPI) record(e Event) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.events = append(r.events, e)
}

func (r *RecordingAPI) ReportBroken(id string, params ...any) {
	r.record(Event{Kind: EventBroken, ID: id, Params: params})
}

func (r *RecordingAPI) ReportWarning(id string, params ...any) {
	r.record(Event{Kind: EventWarning, ID: id, Params: params})
}

func (r *RecordingAPI) ReportInfo(msg string, params ...any) {
	r.record(Event{Kind: EventInfo, ID: msg, Params: params})
}

func (r *RecordingAPI) ReportDebug(msg string, params ...any) {
	r.record(Event{Kind: EventDebug, ID: msg, Params: params})
}

func (r *RecordingAPI) ReportCount(id string, count int64) {
	r.record(Event{Kind: EventCount, ID: id, Count: count})
}

// Events returns the recorded events of the given kind in the order they
// were reported.
func (r *RecordingAPI) Events(kind EventKind) []Event {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var out []Event
	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
