// Package main provides the verso CLI.
package main

import (
	"github.com/mesh-intelligence/verso/internal/cli"
)

func main() {
	cli.Execute()
}
