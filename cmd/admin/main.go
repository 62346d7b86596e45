package main

import "github.com/example/commerceops/internal/cmd"

func main() {
	cmd.Execute()
}
