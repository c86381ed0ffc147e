package main

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/civicroom/memberdesk/internal/clock"
	"github.com/civicroom/memberdesk/internal/config"
	"github.com/civicroom/memberdesk/internal/contactinfo"
	"github.com/civicroom/memberdesk/internal/jobqueue"
	"github.com/civicroom/memberdesk/internal/notifier"
	"github.com/civicroom/memberdesk/internal/organization"
	"github.com/civicroom/memberdesk/internal/providers/email"
	"github.com/civicroom/memberdesk/pkg/db"
	"github.com/civicroom/memberdesk/pkg/log"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		contactinfo.Module,
		organization.Module,
		email.Module,
		jobqueue.Module,
		notifier.Module,

		fx.Invoke(StartWorker),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(3)
	if err != nil {
		panic(err)
	}
	return node
}

func StartWorker(lc fx.Lifecycle, w *jobqueue.Worker) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())

			go w.RunForever(ctx)

			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})

			return nil
		},
	})
}
