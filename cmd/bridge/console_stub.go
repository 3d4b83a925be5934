//go:build !windows

package main

// No console management outside Windows; the bridge runs as a normal daemon.
func hideConsoleWindow() {}

func spawnDetachedIfNeeded() bool { return false }
