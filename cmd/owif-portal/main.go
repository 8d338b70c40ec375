package main

import (
	"os"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		verbose, _ := root.PersistentFlags().GetBool("verbose")
		NewErrorHandler(root.ErrOrStderr(), verbose).Handle(err)
		os.Exit(1)
	}
}
