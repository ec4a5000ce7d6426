package main

import "mlcatalog/internal/cli"

func main() {
	cli.Execute()
}
