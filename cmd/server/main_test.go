package main

import (
	"net"
	"os"
	"syscall"
	"testing"
	"time"

	"portal/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServe_ListenFailureReturnsError(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	done := make(chan error, 1)
	go func() {
		done <- serve(fiber.New(fiber.Config{DisableStartupMessage: true}), busy.Addr().String(), make(chan os.Signal), logger.New("test"))
	}()

	select {
	case err := <-done:
		assert.ErrorContains(t, err, "address already in use")
	case <-time.After(5 * time.Second):
		t.Fatal("serve kept waiting after the listener failed")
	}
}

func TestServe_ShutsDownOnSignal(t *testing.T) {
	quit := make(chan os.Signal, 1)
	server := fiber.New(fiber.Config{DisableStartupMessage: true})
	server.Hooks().OnListen(func(fiber.ListenData) error {
		quit <- syscall.SIGTERM
		return nil
	})

	done := make(chan error, 1)
	go func() {
		done <- serve(server, "127.0.0.1:0", quit, logger.New("test"))
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout):
		t.Fatal("serve did not return after the shutdown signal")
	}
}
