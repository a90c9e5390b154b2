package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSwaggerURL(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{name: "default", host: "", want: "http://localhost:8080/swagger/index.html"},
		{name: "bare host", host: "api.example.com", want: "http://api.example.com/swagger/index.html"},
		{name: "https host", host: "https://api.example.com", want: "https://api.example.com/swagger/index.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, swaggerURL(tt.host, "8080"))
		})
	}
}
