package main

import "github.com/nmikhailov/guessnum/internal/cli"

func main() {
	cli.Execute()
}
