package ownhttp

import (
	"fmt"
	"net/http"
	"runtime"
)

// Version is set from the cmd package on startup
var Version = "dev"

// AddHeaderTransport sets our User-Agent header on every request
type AddHeaderTransport struct {
	T http.RoundTripper
}

func (adt *AddHeaderTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", fmt.Sprintf(
		"fastmc/%s (%s; %s)",
		Version,
		runtime.GOOS,
		runtime.GOARCH,
	))
	return adt.T.RoundTrip(req)
}

func NewAddHeaderTransport(T http.RoundTripper) *AddHeaderTransport {
	if T == nil {
		T = http.DefaultTransport
	}
	return &AddHeaderTransport{T}
}
