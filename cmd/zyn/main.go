package main

import (
	"github.com/joho/godotenv"

	"github.com/zynbuild/zyn/cmd/zyn/cmd"
)

func main() {
	_ = godotenv.Load()
	cmd.Execute()
}
