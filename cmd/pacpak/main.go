package main

import (
	"os"

	"github.com/blackwell-systems/pacpak/internal/app"
)

func main() {
	os.Exit(app.Execute(os.Args[1:]))
}
