package system

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/timebox/internal/cli"
	"github.com/julianstephens/timebox/internal/config"
	"github.com/julianstephens/timebox/internal/web"
)

type ServeCmd struct {
	Addr string `help:"Listen address (default TIMEBOX_ADDR or 127.0.0.1:5000)."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	addr := config.Addr(c.Addr, nil)

	srv, err := web.New(ctx.Planner)
	if err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Serving timebox on http://%s (ctrl+c to stop)\n", addr)
	return srv.Run(sigCtx, addr)
}
