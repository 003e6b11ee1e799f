package main

import "github.com/ValentinKolb/dTT/cmd"

func main() {
	cmd.Execute()
}
