package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/ardnew/stampver/cli"
	"github.com/ardnew/stampver/log"
	"github.com/ardnew/stampver/script"
)

func main() {
	err := cli.Run(context.Background(), os.Exit, os.Args[1:]...)
	if err != nil {
		log.Error("run failed", slog.Any("error", err))

		var se *script.Error
		if errors.As(err, &se) && se.Snippet() != "" {
			_, _ = os.Stderr.WriteString(se.Snippet() + "\n")
		}

		os.Exit(1)
	}
}
