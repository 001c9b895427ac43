// Package main is the habitoctl entry point.
package main

import "github.com/habitoapp/habito-server/internal/cli"

func main() {
	cli.Execute()
}
