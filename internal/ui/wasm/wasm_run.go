//go:build js && wasm

package wasm

import "syscall/js"

// RunApp wires the form guard once the document is parsed and blocks forever.
func RunApp() {
	done := make(chan struct{})
	Document = js.Global().Get("document")
	if !Document.Truthy() {
		js.Global().Get("console").Call("error", "document missing")
		return
	}

	if Document.Get("readyState").String() == "loading" {
		var ready js.Func
		ready = js.FuncOf(func(js.Value, []js.Value) any {
			initFormGuard()
			ready.Release()
			return nil
		})
		Document.Call("addEventListener", "DOMContentLoaded", ready)
	} else {
		initFormGuard()
	}
	<-done
}
