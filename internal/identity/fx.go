package identity

import (
	"github.com/civicroom/memberdesk/internal/identity/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("identity.service",
	fx.Provide(repository.NewRepository),
)
