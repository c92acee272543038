package main

import (
	"net/http"

	"github.com/fastmc/fastmc/cmd"
	"github.com/fastmc/fastmc/internals/ownhttp"
)

// set by goreleaser
var version = "dev"

func main() {
	// replace default http client
	http.DefaultClient = ownhttp.New()

	ownhttp.Version = version
	cmd.Version = version
	cmd.Execute()
}
