package main

import (
	"context"
	"gsapp-backend/cmd/gsapp/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
