// Gumshoe is a command-line client for a remote investigation agent.
//
// It talks to the agent service over its JSON-RPC endpoint, manages the
// session handshake transparently, and streams long-running
// investigation responses to the terminal. Exchanges are recorded to a
// local SQLite transcript for later review.
//
// Usage:
//
//	gumshoe ask <question>      Ask a question and stream the answer
//	gumshoe chats               List active chats
//	gumshoe turfs               List or search connected systems
//	gumshoe cancel <chat-id>    Cancel an in-flight investigation
//	gumshoe log                 Show recent exchanges from the transcript
//	gumshoe ping                Check connectivity to the agent
//	gumshoe version             Print version and build information
//
// Configuration is loaded from a YAML file discovered automatically
// (see [config.DefaultSearchPaths]); the agent token can also be
// supplied via the GUMSHOE_TOKEN environment variable.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	Execute(ctx)
}
