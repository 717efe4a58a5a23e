package catfacts

import (
	"github.com/roach88/corebridge/internal/bridge"
	"github.com/roach88/corebridge/internal/core"
)

var shell = bridge.NewShell(NewHandler)

// NewHandler builds a fresh engine running the app.
func NewHandler() bridge.Handler {
	return core.New(App{})
}

// Shell returns the process-wide boundary.
func Shell() *bridge.Shell {
	return shell
}

// ProcessEvent asks the core to process an event.
// It panics with *bridge.FatalError if the event cannot be processed.
func ProcessEvent(data []byte) []byte {
	return shell.ProcessEvent(data)
}

// HandleResponse asks the core to handle the response to request id.
// It panics with *bridge.FatalError if the response cannot be handled.
func HandleResponse(id uint32, data []byte) []byte {
	return shell.HandleResponse(id, data)
}

// View asks the core for the current view.
// It panics with *bridge.FatalError if the view cannot be encoded.
func View() []byte {
	return shell.View()
}
