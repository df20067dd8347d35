package jwtbearer

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"

	"github.com/viant/jwtbearer/store"
)

// Options configures the Run entry point.
type Options struct {
	ConfigURL string `short:"f" long:"config" description:"config document URL" required:"true"`
	CacheURL  string `short:"t" long:"token-cache" description:"optional URL persisting the token across invocations"`
	Watch     bool   `short:"w" long:"watch" description:"keep running and refresh the token in the background"`
}

// Run acquires a token per the config document and prints it. The initial
// acquisition blocks until it succeeds or its backoff budget is exhausted; an
// exhausted budget is fatal since no token exists for any caller yet. With
// --watch the freshness scheduler keeps the token current until interrupted.
func Run(args []string) error {
	options := &Options{}
	if _, err := flags.ParseArgs(options, args); err != nil {
		return err
	}
	ctx := context.Background()
	config, err := LoadConfig(ctx, options.ConfigURL)
	if err != nil {
		return err
	}
	var managerOptions []Option
	if options.CacheURL != "" {
		managerOptions = append(managerOptions, WithStore(store.NewFileStore(options.CacheURL)))
	}
	manager, err := New(ctx, config, managerOptions...)
	if err != nil {
		return err
	}
	if err := manager.RefreshIfExpiring(ctx); err != nil {
		return err
	}
	accessToken, err := manager.Token(ctx)
	if err != nil {
		return err
	}
	fmt.Println(accessToken)
	if !options.Watch {
		return nil
	}
	manager.Start(ctx)
	defer manager.Close()
	notify := make(chan os.Signal, 1)
	signal.Notify(notify, syscall.SIGINT, syscall.SIGTERM)
	<-notify
	return nil
}
