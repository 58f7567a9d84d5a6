package main

import "github.com/deploykit/blueprint/cmd/blueprint"

func main() {
	blueprint.Execute()
}
