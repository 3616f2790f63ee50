// mailview-token issues signed view links offline. It is a companion
// utility and plays no part in the request path.
package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"

	"mailview/pkg/token"
)

func main() {
	emailID := flag.String("email", "", "Email id to issue a token for")
	secret := flag.String("secret", "", "Signing secret (defaults to LINK_SIGNING_SECRET)")
	ttl := flag.Duration("ttl", time.Hour, "Token time-to-live")
	baseURL := flag.String("url", "", "If set, print a full view link instead of the bare token")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "could not load .env: %v\n", err)
	}

	signingSecret := *secret
	if signingSecret == "" {
		signingSecret = os.Getenv("LINK_SIGNING_SECRET")
	}
	if *emailID == "" || signingSecret == "" {
		flag.Usage()
		os.Exit(1)
	}

	tok, err := token.Sign(*emailID, signingSecret, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not sign token: %v\n", err)
		os.Exit(1)
	}

	if *baseURL == "" {
		fmt.Println(tok)
		return
	}

	u, err := url.Parse(*baseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid base url: %v\n", err)
		os.Exit(1)
	}
	q := u.Query()
	q.Set("token", tok)
	u.RawQuery = q.Encode()
	fmt.Println(u.String())
}
