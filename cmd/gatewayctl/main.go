package main

import "github.com/gymcore/gym-gateway/cmd/gatewayctl/cmd"

func main() {
	cmd.Execute()
}
