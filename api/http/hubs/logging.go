package hubs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pushmesh/hub-sdk-go/model/hub"
	"github.com/pushmesh/hub-sdk-go/util"
)

type logging struct {
	svc Service
	log *slog.Logger
}

func NewLogging(svc Service, log *slog.Logger) Service {
	return logging{
		svc: svc,
		log: log,
	}
}

func (l logging) Create(ctx context.Context, d *hub.Description) (created *hub.Description, err error) {
	created, err = l.svc.Create(ctx, d)
	l.log.Log(ctx, util.LogLevel(err), fmt.Sprintf("hubs.Create(%s): %s", d.Path(), err))
	return
}

func (l logging) Get(ctx context.Context, path string) (d *hub.Description, err error) {
	d, err = l.svc.Get(ctx, path)
	l.log.Log(ctx, util.LogLevel(err), fmt.Sprintf("hubs.Get(%s): %s", path, err))
	return
}

func (l logging) Update(ctx context.Context, d *hub.Description) (updated *hub.Description, err error) {
	updated, err = l.svc.Update(ctx, d)
	l.log.Log(ctx, util.LogLevel(err), fmt.Sprintf("hubs.Update(%s): %s", d.Path(), err))
	return
}

func (l logging) Delete(ctx context.Context, path string) (err error) {
	err = l.svc.Delete(ctx, path)
	l.log.Log(ctx, util.LogLevel(err), fmt.Sprintf("hubs.Delete(%s): %s", path, err))
	return
}

func (l logging) List(ctx context.Context) (paths []string, err error) {
	paths, err = l.svc.List(ctx)
	l.log.Log(ctx, util.LogLevel(err), fmt.Sprintf("hubs.List(): %d, %s", len(paths), err))
	return
}
