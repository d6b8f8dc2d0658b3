package activity

// Event is an Activity carrying a destination link and a payload. It is
// delivered to the Handler registered on the destination link once it
// reaches the front of the destination TimeVortex.
type Event struct {
	Base

	LinkID  LinkID
	Payload []byte
}

// NewEvent creates an Event bound for linkID, due at t, carrying payload.
// The handler is set once the event is placed on its destination queue
// (mirroring EventBase.SetHandler: only the owning side may assign it).
func NewEvent(t SimTime, priority int32, linkID LinkID, payload []byte) *Event {
	return &Event{
		Base:    NewBase(t, priority, nil),
		LinkID:  linkID,
		Payload: payload,
	}
}

// SetHandler binds the handler that will receive this event: only the
// destination Link, at enqueue time, sets it.
func (e *Event) SetHandler(h Handler) { e.handler = h }
