package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/civicroom/memberdesk/internal/authorization"
	"github.com/civicroom/memberdesk/internal/clock"
	"github.com/civicroom/memberdesk/internal/commands"
	"github.com/civicroom/memberdesk/internal/config"
	"github.com/civicroom/memberdesk/internal/contactinfo"
	"github.com/civicroom/memberdesk/internal/identity"
	"github.com/civicroom/memberdesk/internal/migration"
	"github.com/civicroom/memberdesk/internal/organization"
	"github.com/civicroom/memberdesk/internal/ratelimit"
	"github.com/civicroom/memberdesk/internal/server"
	"github.com/civicroom/memberdesk/pkg/db"
	"github.com/civicroom/memberdesk/pkg/log"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		clock.Module,

		identity.Module,
		organization.Module,
		authorization.Module,
		contactinfo.Module,
		commands.Module,

		ratelimit.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
