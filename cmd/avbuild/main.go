package main

import (
	"github.com/avkit/avbuild/cmd/avbuild/internal"
)

func main() {
	internal.Execute()
}
