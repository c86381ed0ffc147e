package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/civicroom/memberdesk/internal/clock"
	"github.com/civicroom/memberdesk/internal/config"
	"github.com/civicroom/memberdesk/internal/contactinfo"
	"github.com/civicroom/memberdesk/internal/jobqueue"
	"github.com/civicroom/memberdesk/internal/membership"
	"github.com/civicroom/memberdesk/internal/migration"
	"github.com/civicroom/memberdesk/internal/ratelimit"
	"github.com/civicroom/memberdesk/internal/scheduler"
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

		contactinfo.Module,
		membership.Module,
		jobqueue.Module,
		ratelimit.Module,
		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(2)
	if err != nil {
		panic(err)
	}
	return node
}
