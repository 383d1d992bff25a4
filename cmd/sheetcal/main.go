package main

import (
	"fmt"
	"os"

	appLog "sheetcal/internal/log"
)

func main() {
	err := newRootCmd().Execute()
	_ = appLog.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
