package main

import (
	"os"

	"github.com/kaspanet/txtracker/app"
)

func main() {
	if err := app.StartApp(); err != nil {
		os.Exit(1)
	}
}
