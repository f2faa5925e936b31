package main

import "github.com/nkaumov/kurs-zakat/cmd"

func main() {
	cmd.Execute()
}
