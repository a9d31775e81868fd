package main

import (
	"os"

	// Provider implementations register themselves from init()
	_ "filedock/internal/provider"
)

func main() {
	os.Exit(Execute())
}
