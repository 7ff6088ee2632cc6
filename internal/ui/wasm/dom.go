//go:build js && wasm

package wasm

import (
	"syscall/js"

	"github.com/Its-donkey/docshare/internal/ui/formguard"
)

// jsDocument binds formguard.Document to the browser document.
type jsDocument struct {
	value js.Value
}

func (d jsDocument) QuerySelectorAll(selector string) []formguard.Element {
	var out []formguard.Element
	forEachNode(d.value.Call("querySelectorAll", selector), func(node js.Value) {
		out = append(out, jsElement{value: node})
	})
	return out
}

// jsElement binds formguard.Element to a DOM node.
type jsElement struct {
	value js.Value
}

func (e jsElement) AddEventListener(event string, fn formguard.Listener) {
	addHandler(e.value, event, func(_ js.Value, args []js.Value) any {
		if len(args) > 0 {
			fn(jsEvent{value: args[0]})
		} else {
			fn(jsEvent{})
		}
		return nil
	})
}

func (e jsElement) QuerySelector(selector string) formguard.Element {
	node := e.value.Call("querySelector", selector)
	if !node.Truthy() {
		return nil
	}
	return jsElement{value: node}
}

func (e jsElement) Value() string {
	v := e.value.Get("value")
	if v.Type() != js.TypeString {
		return ""
	}
	return v.String()
}

func (e jsElement) Files() []formguard.FileInfo {
	list := e.value.Get("files")
	if !list.Truthy() {
		return nil
	}
	var files []formguard.FileInfo
	forEachNode(list, func(file js.Value) {
		files = append(files, formguard.FileInfo{
			Name: file.Get("name").String(),
			Size: int64(file.Get("size").Float()),
		})
	})
	return files
}

func (e jsElement) ClearFiles() {
	e.value.Set("value", "")
}

func (e jsElement) Focus() {
	e.value.Call("focus")
}

type jsEvent struct {
	value js.Value
}

func (ev jsEvent) PreventDefault() {
	if ev.value.Truthy() {
		ev.value.Call("preventDefault")
	}
}

func forEachNode(list js.Value, fn func(js.Value)) {
	if !list.Truthy() {
		return
	}
	length := list.Get("length").Int()
	for i := 0; i < length; i++ {
		fn(list.Index(i))
	}
}

func addHandler(node js.Value, event string, handler func(js.Value, []js.Value) any) {
	if !node.Truthy() {
		return
	}
	fn := js.FuncOf(handler)
	node.Call("addEventListener", event, fn)
	Handlers = append(Handlers, fn)
}
