package main

import "github.com/Alijeyrad/mindcare_backend/cmd"

func main() {
	cmd.Execute()
}
