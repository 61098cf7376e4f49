// Package loop wires a server and a client together for single-terminal play.
package loop

import (
	"bufio"
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/tomz197/circles/internal/loop/client"
	"github.com/tomz197/circles/internal/loop/config"
	"github.com/tomz197/circles/internal/loop/server"
)

// Run starts an in-process server and drives it from one terminal until the
// user quits or the input ends.
func Run(r *bufio.Reader, w io.Writer, settings config.Settings, logger *log.Logger) error {
	srv, err := server.NewServer(settings, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Run(ctx)

	c := client.NewClient(srv, r, w, client.ClientOptions{Logger: logger})
	return c.Run()
}
