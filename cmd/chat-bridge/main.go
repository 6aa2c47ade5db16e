package main

import (
	"github.com/incidentkit/chat-bridge/cmd"
)

func main() {
	cmd.Execute()
}
