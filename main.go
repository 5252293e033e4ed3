// Package main is the entry point for jobdash, a terminal dashboard for job market
// insights backed by PostgreSQL.
package main

import (
	"jobdash/cli/cmd"
)

func main() {
	cmd.Execute()
}
