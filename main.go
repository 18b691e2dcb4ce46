package main

import "github.com/NutekSecurity/dirnutek/cmd"

func main() {
	cmd.Execute()
}
