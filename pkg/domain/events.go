package domain

import "time"

// Notice is a transient, user-visible status message pushed by the backend.
// It carries no state change and expires on its own.
type Notice struct {
	ID   int       `json:"id"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Hooks defines callbacks for presentation adapters.
// They fire after a change has been applied, for local and inbound changes alike.
// Hooks run inside the session's event context and must not call back into it.
type Hooks struct {
	OnObjectAdded   func(*Object)
	OnObjectRemoved func(name string)
	OnConnect       func(Connection)
	OnDisconnect    func(Connection)
	OnDisplay       func(name string, d Display)
	OnValue         func(name string, v float64)
	OnReplace       func(objects []*Object)
	OnNotice        func(Notice)
	OnNoticeExpired func(Notice)
	OnDisconnected  func(err error)
}
