package main

import (
	"fmt"
	"os"

	"github.com/stardustagi/HelpDeskGPT/libs/logs"
	"github.com/stardustagi/HelpDeskGPT/libs/option"
)

var version = "dev"

func main() {
	opts := option.NewOptions()
	a := &app{opts: opts, out: os.Stdout}
	if err := a.register(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	err := opts.Parse()
	logs.Sync()
	if err != nil {
		os.Exit(1)
	}
	if opts.Version {
		fmt.Fprintln(os.Stdout, "helpdesk", version)
	}
}
