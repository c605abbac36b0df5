package main

import (
	"os"

	"github.com/psds-microservice/arm-service-desk/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
