package main

import "github.com/benedict-erwin/influxmap/cmd"

func main() {
	cmd.Execute()
}
