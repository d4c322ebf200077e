package main

import "github.com/johnayoung/llm-council/internal/cli"

func main() {
	cli.Execute()
}
