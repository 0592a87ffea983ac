package main

import "github.com/heshamdawsha976/sen2/internal/cmd"

func main() {
	cmd.Execute()
}
