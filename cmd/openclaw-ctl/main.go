package main

import (
	"os"

	"github.com/sungkue/openclaw/cmd/openclaw-ctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
