package liststore

// Level is the severity of a Notice.
type Level int

const (
	// Info notices do not block the user (e.g. "showing example data").
	Info Level = iota
	// Error notices report a rolled-back mutation.
	Error
)

func (l Level) String() string {
	if l == Error {
		return "error"
	}
	return "info"
}

// Notice is a user-facing message raised by a store.
type Notice struct {
	Level   Level
	Title   string
	Message string
}

// Notifier receives notices. Implementations must not block.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }
