//go:build tools

// Package tools lists the developer tools used on the storefront. They are run
// with `go run`/`go install` at pinned versions and are not part of go.mod.
package tools

// Air rebuilds cmd/storefront on Go changes; templates already hot reload when DEV=true.
//
//	go install github.com/air-verse/air@v1.63.0
//	air --build.cmd "go build -o ./tmp/storefront ./cmd/storefront" --build.bin ./tmp/storefront
//
// Mockgen regenerates the gomock doubles in internal/mocks from internal/ports.
//
//	go generate ./internal/mocks
