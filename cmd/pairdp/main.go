// cmd/pairdp/main.go
package main

import (
	"pairdp/internal/app"
	"pairdp/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
