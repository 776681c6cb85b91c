package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

var (
	calcConfig *CalcConfig
	auditStore *AuditStore
)

func init() {
	var err error

	// Extract necessary environment variables
	timeoutEnv := os.Getenv("TIMEOUT")
	appVersion = os.Getenv("APP_VERSION")

	// Set default value if not set
	if timeoutEnv == "" {
		globalTimeout = 30
	} else {
		// Convert timeout to integer
		globalTimeout, err = strconv.Atoi(timeoutEnv)
		if err != nil {
			log.Fatalf("Failed to convert timeout environment variable to integer")
		}
	}

	// Load calculation parameters (defaults plus any file overrides)
	calcConfig, err = readConfig()
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	// Connect the optional audit store. A missing database URL disables
	// persistence; a broken one is fatal at startup.
	var err error
	auditStore, err = openAuditStore(context.Background(), getEnv("AUDIT_DB_SCHEMA", "adherence_audit"))
	if err != nil {
		log.Fatal(err)
	}
	if auditStore != nil {
		defer auditStore.Close()
	}

	// Create new Echo object
	e := echo.New()

	// Add basic middleware to log all requests
	e.Use(middleware.Logger())

	// Configure elastic apm logging
	initAPM(e)

	// Sets CORS headers to allow all origins, but restrict HTTP method type
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
	}))

	// Middleware to provide more control over response status for APM transactions
	// This must go after the Elastic APM middleware
	e.Use(filterError)

	// Adds a heartbeat handler
	e.GET("/heartbeat", heartbeat)

	// Creates API group to simplify middleware declaration
	adherenceGroup := e.Group("/adherence-services")

	// Add a GET handler for presenting the calculation services available
	adherenceGroup.GET("", adherenceServices)

	// Add POST handlers for the single and batch calculation services
	adherenceGroup.POST("/calculate", calculate, openId)
	adherenceGroup.POST("/batch", batch, openId)

	// Start server
	e.Logger.Fatal(e.Start(":8000"))
}
