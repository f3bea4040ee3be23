package main

import (
	"context"

	"github.com/zphrs/ucsc-menu/cmd/menu-cli/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
