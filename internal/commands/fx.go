package commands

import (
	"github.com/civicroom/memberdesk/internal/push"
	"go.uber.org/fx"
)

var Module = fx.Module("commands",
	fx.Provide(push.NewHub),
	fx.Provide(NewDispatcher),
	fx.Provide(NewContactInfoHandlers),
	fx.Invoke(RegisterContactInfo),
)
