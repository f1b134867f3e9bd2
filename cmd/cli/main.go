package main

import (
	"fmt"
	"os"

	"github.com/crucial707/studybuddy/cmd/cli/root"
	"github.com/crucial707/studybuddy/cmd/cli/tools"
	"github.com/crucial707/studybuddy/cmd/cli/users"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	rootCmd := root.GetRoot()
	users.InitUsers(rootCmd)
	tools.InitTools(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
