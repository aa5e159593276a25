// utils/http.go
package utils

import (
	"net/http"
)

// AIHTTPClient talks to the generative AI service. No client timeout: the request
// context decides how long a call may take.
var AIHTTPClient = &http.Client{
	Transport: &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: 16,
		ForceAttemptHTTP2:   true,
	},
}
