package main

import (
	log "github.com/sirupsen/logrus"

	"github.com/nicevibesplus/qgis-workflow-documentation/pkg/cli"
)

func main() {
	if err := cli.New().Execute(); err != nil {
		log.Fatalf("error during command execution: %v", err)
	}
}
