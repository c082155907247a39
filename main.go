package main

import (
	"os"

	"github.com/gatebox/gatebox/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
