// Command monthbuilder turns a month of prayer-time CSV rows into the signed
// JSON payload served by the static site.
//
// Usage:
//
//	monthbuilder <region> <year> <month> <timezone>
//	monthbuilder verify <payload.json>...
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/couchcryptid/prayer-month-builder/cmd/monthbuilder/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := commands.Execute(ctx, commands.DefaultDeps())
	stop()
	os.Exit(code)
}
