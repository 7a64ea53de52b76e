package main

import (
	"os"

	"github.com/mna/mainer"

	"github.com/DrkWithT/ExpliceLang/internal/maincmd"
)

// placeholder value, replaced on build; must be maj.min.patch
var version = "0.1.0"

func main() {
	c := maincmd.Cmd{BuildVersion: version}
	os.Exit(int(c.Main(os.Args, mainer.CurrentStdio())))
}
