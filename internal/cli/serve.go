package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jamzrob/todoer/internal/server"
	"github.com/jamzrob/todoer/internal/store/daylog"
)

func (a *app) serveCommand() *cobra.Command {
	var (
		addr  string
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the day's list over HTTP",
		Long: `Serve one day's list over HTTP until interrupted.

  GET  /        the list
  POST /add     body is the item name
  POST /done    body is the item number
  POST /remove  body is the item number
  GET  /all     every day merged
  GET  /ws      live updates over a websocket

The day is fixed when the server starts. Set server.token (or
TODOER_TOKEN) to require a bearer token on POST requests.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			if watch {
				a.cfg.Server.Watch = true
			}

			token, err := server.ResolveToken(a.cfg.Server.Token, a.cfg.Server.TokenFile)
			if err != nil {
				return err
			}
			l, err := a.open()
			if err != nil {
				return err
			}

			opts := server.Options{
				Shared:  daylog.NewShared(l),
				Journal: a.journal,
				Mode:    a.mode,
				Token:   token,
				Logger:  a.logger.WithPrefix("serve"),
			}
			if a.cfg.Server.Watch {
				path := l.Path
				opts.Reload = func() (*daylog.DayLog, error) { return daylog.OpenFile(path) }
			}
			if token == "" {
				a.logger.Warn("no token configured, mutations are open to anyone who can reach the server")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(opts).Run(ctx, a.cfg.Server.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload the list when its file changes on disk")
	return cmd
}
