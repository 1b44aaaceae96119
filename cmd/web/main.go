// Command web serves the agenda as a form-driven web page. It shares the
// agenda.Service and SQLite store with the desktop app and the CLI.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/MihkelHunter/mkAgenda/internal/host"
	"github.com/MihkelHunter/mkAgenda/internal/notify"
	"github.com/MihkelHunter/mkAgenda/internal/web"
)

func main() {
	configPath := flag.String("config", "", "config file (default ~/.mkagenda/config.yaml)")
	addr := flag.String("addr", "", "listen address (overrides config)")
	flag.Parse()

	app, err := host.Open(context.Background(), *configPath, notify.LogNotifier{}, log.Default())
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close()

	listen := app.Config.Web.Addr
	if *addr != "" {
		listen = *addr
	}

	srv := web.NewServer(app.Service, web.Options{
		Window:         app.Config.Window(),
		Sort:           app.Strategy(),
		AllowedOrigins: app.Config.Web.AllowedOrigins,
	})

	log.Printf("Web UI listening on http://localhost%s (db %s)", listen, app.Config.DBPath)
	if err := srv.Run(listen); err != nil {
		log.Printf("web: %v", err)
	}
}
