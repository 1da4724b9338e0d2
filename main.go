package main

import (
	"log"

	"github.com/anoixa/comic-tracker/cmd"
	"github.com/anoixa/comic-tracker/config"
	_ "github.com/anoixa/comic-tracker/docs"
)

// @title           Comic Tracker API
// @version         1.0
// @description     Webcomic release tracking and status timeline service.
// @BasePath        /api/v1

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description "Bearer <token>" or "ApiKey <key>"

func main() {
	log.Printf("comic tracker %s (%s)", config.Version, config.CommitHash)
	cmd.Execute()
}
