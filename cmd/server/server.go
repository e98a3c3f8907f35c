// Package main is the entry point of the server-identity API server.
package main

import (
	"server-identity/internal"
)

func main() {
	internal.Init()
}
