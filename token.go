package main

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

func parseToken(authHeader string) (*jwt.Token, error) {
	index := strings.Index(authHeader, "Bearer ")
	if index == 0 {
		authHeader = authHeader[len("Bearer "):]
	}

	// Parse the auth token
	token, _, err := new(jwt.Parser).ParseUnverified(authHeader, jwt.MapClaims{})
	if err != nil {
		return nil, err
	}

	return token, nil
}

// tokenSubject extracts the "sub" claim for request attribution in logs
func tokenSubject(token *jwt.Token) (string, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("subject (sub) claim not found")
	}

	sub := claims["sub"]
	if sub == nil {
		return "", fmt.Errorf("invalid subject (sub) value")
	}

	subject, ok := sub.(string)
	if !ok {
		return "", fmt.Errorf("subject (sub) not a valid string")
	}

	return subject, nil
}
