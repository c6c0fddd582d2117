package main

import (
	"context"
	"fmt"
	"os"

	"scenecast/internal/config"
	"scenecast/internal/daemonrun"
)

func main() {
	configPath := ""
	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--config", "-c":
			if i+1 < len(args) {
				configPath = args[i+1]
				i++
			}
		case "--help", "-h":
			fmt.Println("Usage: scenecastd [--config PATH]")
			return
		}
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{}); err != nil {
		fmt.Fprintf(os.Stderr, "scenecastd: %v\n", err)
		os.Exit(1)
	}
}
