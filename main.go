/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/watchloom/depgraph/cmd"

func main() {
	cmd.Execute()
}
