package notifier

import (
	"github.com/civicroom/memberdesk/internal/jobqueue"
	"go.uber.org/fx"
)

var Module = fx.Module("notifier",
	fx.Provide(New),
	fx.Invoke(func(n *Notifier, w *jobqueue.Worker) {
		n.Register(w)
	}),
)
