package formguard

// Notifier presents a blocking message to the user.
type Notifier interface {
	Alert(message string)
}

// Console receives developer diagnostics.
type Console interface {
	Log(line string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

// Alert calls f(message).
func (f NotifierFunc) Alert(message string) { f(message) }

// ConsoleFunc adapts a function to Console.
type ConsoleFunc func(line string)

// Log calls f(line).
func (f ConsoleFunc) Log(line string) { f(line) }

// Recorder keeps alerts and console lines in memory. It satisfies both
// Notifier and Console and is meant for tests and headless checks.
type Recorder struct {
	Alerts []string
	Lines  []string
}

// Alert records message.
func (r *Recorder) Alert(message string) {
	r.Alerts = append(r.Alerts, message)
}

// Log records line.
func (r *Recorder) Log(line string) {
	r.Lines = append(r.Lines, line)
}

// LastAlert returns the most recent alert, or "" when none was shown.
func (r *Recorder) LastAlert() string {
	if len(r.Alerts) == 0 {
		return ""
	}
	return r.Alerts[len(r.Alerts)-1]
}

// Reset drops everything recorded so far.
func (r *Recorder) Reset() {
	r.Alerts = nil
	r.Lines = nil
}

type discard struct{}

func (discard) Alert(string) {}
func (discard) Log(string)   {}
