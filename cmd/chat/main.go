package main

import "github.com/Hari31416/multimodal-chatbot/cmd/chat/cli"

func main() {
	cli.Execute()
}
