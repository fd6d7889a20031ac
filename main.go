package main

import "faceregistry/cmd"

func main() {
	cmd.Execute()
}
