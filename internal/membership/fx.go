package membership

import (
	"github.com/civicroom/memberdesk/internal/membership/repository"
	"github.com/civicroom/memberdesk/internal/membership/service"
	"go.uber.org/fx"
)

var Module = fx.Module("membership.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
