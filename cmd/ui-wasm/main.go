//go:build js && wasm

package main

import "github.com/Its-donkey/docshare/internal/ui/wasm"

func main() {
	wasm.RunApp()
}
