// Command ezs2st records speech from the microphone until Enter is pressed,
// translates it to English and plays the result.
//
// Usage:
//
//	ezs2st [--config path]
//	ezs2st devices
package main

import (
	"os"

	"golang.design/x/hotkey/mainthread"
)

func main() {
	code := 0
	// The hotkey backend needs the main thread on macOS
	mainthread.Init(func() {
		code = execute(os.Args[1:])
	})
	os.Exit(code)
}
