/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/platformkit/knobstore/cmd/knobctl/cmd"

func main() {
	cmd.Execute()
}
