package main

import (
	"os"

	"github.com/gartstein/vacation/internal/vacation/commands"
	e "github.com/gartstein/vacation/internal/vacation/errors"
)

func main() {
	app := &commands.App{}
	err := commands.New(app).Execute()
	_ = app.Close()
	if err != nil {
		if e.IsFatal(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
