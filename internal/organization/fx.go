package organization

import (
	"github.com/civicroom/memberdesk/internal/organization/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("organization.service",
	fx.Provide(repository.NewRepository),
)
