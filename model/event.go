package model

import "fmt"

type EventKind uint8

const (
	NoteOn EventKind = iota + 1
	NoteOff
	Controller
	// Stop terminates a processor's event loop.
	Stop
)

var eventKindNames = map[EventKind]string{
	NoteOn:     "note_on",
	NoteOff:    "note_off",
	Controller: "controller",
	Stop:       "stop",
}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *EventKind) UnmarshalText(b []byte) error {
	for kind, name := range eventKindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown event kind %q", string(b))
}

// Event is an already-parsed MIDI message. Key and Velocity are set for
// note events, Controller and Value for control changes.
type Event struct {
	Kind       EventKind `json:"kind"`
	Channel    uint8     `json:"channel"`
	Key        uint8     `json:"key,omitempty"`
	Velocity   uint8     `json:"velocity,omitempty"`
	Controller uint8     `json:"controller,omitempty"`
	Value      uint8     `json:"value,omitempty"`
}

func NewNoteOn(channel, key, velocity uint8) Event {
	return Event{Kind: NoteOn, Channel: channel, Key: key, Velocity: velocity}
}

func NewNoteOff(channel, key, velocity uint8) Event {
	return Event{Kind: NoteOff, Channel: channel, Key: key, Velocity: velocity}
}

func NewController(channel, controller, value uint8) Event {
	return Event{Kind: Controller, Channel: channel, Controller: controller, Value: value}
}

func NewStop() Event {
	return Event{Kind: Stop}
}

// Normalized turns a note-on with zero velocity into the note-off it means.
func (e Event) Normalized() Event {
	if e.Kind == NoteOn && e.Velocity == 0 {
		e.Kind = NoteOff
	}
	return e
}

// Valid reports whether every data byte fits in seven bits and the channel
// is one of the sixteen.
func (e Event) Valid() bool {
	if e.Kind < NoteOn || e.Kind > Stop {
		return false
	}
	return e.Channel < 16 && e.Key < 128 && e.Velocity < 128 && e.Controller < 128 && e.Value < 128
}

func (e Event) String() string {
	switch e.Kind {
	case NoteOn, NoteOff:
		return fmt.Sprintf("%v ch=%d key=%d vel=%d", e.Kind, e.Channel, e.Key, e.Velocity)
	case Controller:
		return fmt.Sprintf("%v ch=%d cc=%d val=%d", e.Kind, e.Channel, e.Controller, e.Value)
	}
	return e.Kind.String()
}
