package core

// Logger is the app-wide logging contract. Implementations may inspect args for
// known types (eg. a user.User to attach the acting user to an error report).
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}
