package main

import "github.com/novahuman/compass/internal/cmd"

func main() {
	cmd.Execute()
}
