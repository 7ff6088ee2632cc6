//go:build js && wasm

package wasm

import (
	"syscall/js"

	"github.com/Its-donkey/docshare/internal/ui/formguard"
)

var (
	// Document references the global browser document for DOM interactions.
	Document js.Value
	// Handlers keeps bound js.Func callbacks alive for the lifetime of the page.
	Handlers []js.Func
	guard    *formguard.Guard
)

// alertNotifier shows guard messages with window.alert, which blocks until
// the user dismisses it.
type alertNotifier struct{}

func (alertNotifier) Alert(message string) {
	js.Global().Call("alert", message)
}

// consoleLogger forwards diagnostics to console.log.
type consoleLogger struct{}

func (consoleLogger) Log(line string) {
	console := js.Global().Get("console")
	if console.Truthy() {
		console.Call("log", line)
	}
}

func initFormGuard() {
	guard = formguard.New(jsDocument{value: Document}, formguard.Options{
		Notifier: alertNotifier{},
		Console:  consoleLogger{},
	})
	guard.Attach()
}
