package main

import (
	cmd "github.com/rohmanhakim/hikugen/internal/cli"
)

func main() {
	cmd.Execute()
}
