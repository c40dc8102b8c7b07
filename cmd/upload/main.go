package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/stagebridge/stagebridge/internal/client/upload"
	"github.com/stagebridge/stagebridge/internal/logging"
)

func main() {

	opts, err := upload.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	opts.Password, err = upload.PromptPassword(os.Stderr)
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := upload.Run(context.Background(), opts, os.Stdout, logger); err != nil {
		log.Fatalf("%v", err)
	}

}
