package main

import "github.com/KaramelBytes/datalens/cmd"

func main() {
	cmd.Execute()
}
