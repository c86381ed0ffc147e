package contactinfo

import (
	"github.com/civicroom/memberdesk/internal/contactinfo/repository"
	"github.com/civicroom/memberdesk/internal/contactinfo/service"
	"go.uber.org/fx"
)

var Module = fx.Module("contactinfo.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
