package main

import (
	"fmt"
	"os"
	"os/user"
	"strings"
)

const promptColor = "\033[32m"
const promptReset = "\033[0m"

// formatPrompt renders "Quash![user@host cwd]$ ", trimmed to the current
// directory's last path segment the way the original C shell's maintenance()
// built its terminal_prompt. Falls back to plain values when the OS refuses
// to report them rather than failing the prompt outright.
func formatPrompt() string {
	login := "?"
	if u, err := user.Current(); err == nil && u.Username != "" {
		login = u.Username
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "?"
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "?"
	} else if idx := strings.LastIndexByte(cwd, os.PathSeparator); idx >= 0 {
		cwd = cwd[idx+1:]
	}

	return fmt.Sprintf("%sQuash![%s@%s %s]$ %s", promptColor, login, hostname, cwd, promptReset)
}
