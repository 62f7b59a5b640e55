package main

import "github.com/yuanquanya/netmc-launcher/cmd"

func main() {
	cmd.Execute()
}
