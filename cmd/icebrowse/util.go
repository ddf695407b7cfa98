package main

import (
	"fmt"
	"strconv"
	"strings"
)

func splitFields(s string) []string {
	return strings.Fields(s)
}

func splitHostPort(hostport string) (string, int, error) {
	i := strings.LastIndexByte(hostport, ':')
	if i < 0 {
		return "", 0, fmt.Errorf("expected host:port, got %q", hostport)
	}
	port, err := strconv.Atoi(hostport[i+1:])
	if err != nil {
		return "", 0, fmt.Errorf("invalid port in %q: %w", hostport, err)
	}
	return hostport[:i], port, nil
}
