// Package cue is a minimal named-event dispatcher. Objects embed a Listener
// to let observers react to state changes such as a surface becoming dirty.
package cue

// Event is delivered to handlers registered for its name.
type Event struct {
	Name   string
	Data   any
	Target any
}

// Handler reacts to an event.
type Handler func(Event)

// ID identifies a registration so it can be removed with Ignore.
type ID uint64

type entry struct {
	id ID
	fn Handler
}

// Listener dispatches cues to handlers in registration order.
// The zero value is not usable; call New.
type Listener struct {
	target any
	next   ID
	cues   map[string][]entry
}

// New returns a Listener whose events carry target.
func New(target any) *Listener {
	return &Listener{target: target, cues: make(map[string][]entry)}
}

// On registers fn for name and returns its registration id.
func (l *Listener) On(name string, fn Handler) ID {
	l.next++
	l.cues[name] = append(l.cues[name], entry{id: l.next, fn: fn})
	return l.next
}

// Ignore removes the registration id from name. Unknown ids are ignored.
func (l *Listener) Ignore(name string, id ID) {
	list := l.cues[name]
	for i, e := range list {
		if e.id == id {
			l.cues[name] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(l.cues[name]) == 0 {
		delete(l.cues, name)
	}
}

// Cue invokes every handler registered for name at the time of the call.
// Handlers added or removed while dispatching take effect on the next cue.
func (l *Listener) Cue(name string, data any) {
	list := l.cues[name]
	if len(list) == 0 {
		return
	}
	snapshot := append([]entry(nil), list...)
	ev := Event{Name: name, Data: data, Target: l.target}
	for _, e := range snapshot {
		e.fn(ev)
	}
}

// Count returns the number of handlers registered for name.
func (l *Listener) Count(name string) int {
	return len(l.cues[name])
}
