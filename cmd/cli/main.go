package main

import "github.com/slovoasm/slovoasm/cmd/cli/cmd"

func main() {
	cmd.Execute()
}
