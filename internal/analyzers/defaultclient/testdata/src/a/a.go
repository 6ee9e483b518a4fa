package a

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

func bad() {
	_, _ = http.Get("http://collector/ping")                                       // want "http.Get uses the default client"
	_, _ = http.Post("http://collector/data", "text/plain", strings.NewReader("")) // want "http.Post uses the default client"
	_, _ = http.PostForm("http://collector/data", url.Values{})                    // want "http.PostForm uses the default client"
	_, _ = http.Head("http://collector/")                                          // want "http.Head uses the default client"
	c := http.DefaultClient                                                        // want "http.DefaultClient uses the default client"
	_ = c
}

func good() {
	c := &http.Client{Timeout: 5 * time.Second}
	_, _ = c.Get("http://collector/ping")
	_, _ = c.PostForm("http://collector/data", url.Values{})
}
