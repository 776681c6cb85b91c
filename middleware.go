package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"syscall"

	"github.com/labstack/echo/v4"
	"go.elastic.co/apm"
)

var (
	authHost string = os.Getenv("AUTH_HOST")
)

const (
	// Utilizes a non-standard nginx code
	statusClosedConnection int = 499

	authTimeoutSeconds int = 5
)

func filterError(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		resp := c.Response()
		// Process the request
		err := next(c)
		// The below is executed after the request and subsequent middleware
		if err != nil {
			// A broken pipe means the caller went away mid-response; record
			// it as a closed connection rather than a server failure
			if errors.Is(err, syscall.EPIPE) {
				logger(c.Request().Context(), err)
				resp.Status = statusClosedConnection
				return nil
			}
		}
		return err
	}
}

// openId verifies the bearer token with the auth service and stashes the
// parsed token on the context for request attribution in the handlers.
func openId(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		// Obtains raw http request
		r := c.Request()

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			logger(r.Context(), errors.New("authorization header not found"))
			return c.NoContent(http.StatusUnauthorized)
		}

		if err := sendAuth("openid", authHeader, r); err != nil {
			logger(r.Context(), err)
			return c.NoContent(http.StatusUnauthorized)
		}

		// Convert auth header to token and store on request object
		token, err := parseToken(authHeader)
		if err != nil {
			logger(r.Context(), err)
			return c.NoContent(http.StatusUnauthorized)
		}

		// Set token on context struct
		c.Set("user", token)

		// Otherwise return
		return next(c)
	}
}

func sendAuth(api string, authHeader string, r *http.Request) error {
	// Create span
	span, _ := apm.StartSpan(r.Context(), "Verify Caller", "OpenId")
	defer span.End()

	// Forward the bearer token to the auth service; a non-200 response
	// fails the request
	headers := map[string]string{"Authorization": authHeader}
	resp, err := sendRequest("POST", authHost+api, nil, headers, nil, authTimeoutSeconds)
	if err != nil {
		return fmt.Errorf("auth request failed: %v", err)
	}
	defer resp.Body.Close()

	// Verify status code
	// If this succeeds, the token is likely valid
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("auth rejected with status code: %d", resp.StatusCode)
	}

	// Otherwise return
	return nil
}
