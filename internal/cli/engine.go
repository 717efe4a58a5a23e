package cli

import (
	"github.com/roach88/corebridge/internal/app/catfacts"
	"github.com/roach88/corebridge/internal/bridge"
	"github.com/roach88/corebridge/internal/core"
)

// handlerFactory builds catfacts engines configured from opts.
func (o *RootOptions) handlerFactory() func() bridge.Handler {
	return func() bridge.Handler {
		return core.New(catfacts.App{},
			core.WithMaxPending(o.Config.MaxPending),
			core.WithLogger(o.Logger),
		)
	}
}
