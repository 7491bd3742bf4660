package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"chamahub.app/core/tools/linters/enumvalidator"
)

func main() {
	singlechecker.Main(enumvalidator.Analyzer)
}
